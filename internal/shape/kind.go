package shape

import (
	"errors"
	"math"
	"reflect"
)

// Kind is the structural category of a descriptor.
type Kind uint8

const (
	Primitive Kind = iota + 1
	Enum
	Record
	Collection
	Polymorphic
	Nullable
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Enum:
		return "enum"
	case Record:
		return "record"
	case Collection:
		return "collection"
	case Polymorphic:
		return "polymorphic"
	case Nullable:
		return "nullable"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

// Unbounded is the element count of collection kinds.
const Unbounded = math.MaxInt

var (
	// ErrUnsupportedType reports a Go type that has no flat representation.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrUnregistered reports a variant type or discriminator missing from the registry.
	ErrUnregistered = errors.New("not registered")
	// ErrDuplicate reports a second registration of a name or type.
	ErrDuplicate = errors.New("already registered")
)

// Descriptor is the contract every shape fulfils.
type Descriptor interface {
	// Name identifies the shape in messages, usually the Go type name.
	Name() string
	Kind() Kind
	// ElementCount is finite for records and enums and Unbounded for collections.
	ElementCount() int
	// TagFor returns the tag segment of element index.
	TagFor(index int) string
}

// Leaf converts a primitive value to and from its canonical text.
type Leaf interface {
	Descriptor
	Format(v reflect.Value) (string, error)
	Parse(text string) (reflect.Value, error)
}

// EnumShape maps values to symbolic element names.
type EnumShape interface {
	Descriptor
	ElementName(v reflect.Value) (string, bool)
	Element(name string) (reflect.Value, bool)
}

// FieldOptions are per-field flags of a record.
type FieldOptions struct {
	Required  bool
	OmitEmpty bool
}

// RecordShape is a fixed list of named fields.
type RecordShape interface {
	Descriptor
	Element(index int) (Descriptor, error)
	Options(index int) FieldOptions
	Field(rec reflect.Value, index int) reflect.Value
	// New returns a settable zero record.
	New() reflect.Value
	SetField(rec reflect.Value, index int, v reflect.Value)
}

// CollectionShape is a sequence, or a map laid out as key,value,key,value.
type CollectionShape interface {
	Descriptor
	IsMap() bool
	Element(index int) (Descriptor, error)
	// Elements lists the values in encoding order; maps interleave keys and values.
	Elements(v reflect.Value) []reflect.Value
	Build(elems []reflect.Value) (reflect.Value, error)
}

// PolymorphicShape resolves a concrete shape through a discriminator.
type PolymorphicShape interface {
	Descriptor
	// Variant returns the discriminator and descriptor of the concrete value held
	// in v. The error wraps ErrUnregistered when the type is unknown.
	Variant(v reflect.Value) (string, Descriptor, error)
	// Resolve returns the descriptor registered under discriminator. The error
	// wraps ErrUnregistered when the discriminator is unknown.
	Resolve(discriminator string) (Descriptor, error)
	// Wrap converts a concrete value to the polymorphic type.
	Wrap(concrete reflect.Value) reflect.Value
}

// NullableShape is an optional value; null encodes to no key at all.
type NullableShape interface {
	Descriptor
	Elem() (Descriptor, error)
	IsNull(v reflect.Value) bool
	Deref(v reflect.Value) reflect.Value
	Wrap(elem reflect.Value) reflect.Value
	// Null returns the typed null value.
	Null() reflect.Value
}

// DynamicShape is a schemaless tree of map[string]any, []any and scalars. The
// codec lays it out from the runtime value and rebuilds it from the keys.
type DynamicShape interface {
	Descriptor
	Type() reflect.Type
}

// IsNullish reports whether v holds no value: invalid, or a nil pointer,
// interface, map or slice.
func IsNullish(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
