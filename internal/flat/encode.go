package flat

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/shape"
)

// Encode flattens v as described by d into a new map.
func Encode(v reflect.Value, d shape.Descriptor) (*flatmap.Map, error) {
	out := flatmap.New(16)
	if err := EncodeInto(out, "", v, d); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeInto flattens v below tag into out.
func EncodeInto(out *flatmap.Map, tag string, v reflect.Value, d shape.Descriptor) error {
	e := encoder{out: out}
	return e.encode(tag, v, d)
}

// encoder is the context threaded through one Encode call.
type encoder struct {
	out *flatmap.Map
}

func (e *encoder) encode(tag string, v reflect.Value, d shape.Descriptor) error {
	if !v.IsValid() {
		return nil
	}
	switch d.Kind() {
	case shape.Primitive:
		return e.encodeLeaf(tag, v, d.(shape.Leaf))
	case shape.Enum:
		return e.encodeEnum(tag, v, d.(shape.EnumShape))
	case shape.Record:
		return e.encodeRecord(tag, v, d.(shape.RecordShape))
	case shape.Collection:
		return e.encodeCollection(tag, v, d.(shape.CollectionShape))
	case shape.Polymorphic:
		return e.encodePolymorphic(tag, v, d.(shape.PolymorphicShape))
	case shape.Nullable:
		ns := d.(shape.NullableShape)
		if ns.IsNull(v) {
			return nil
		}
		elem, err := ns.Elem()
		if err != nil {
			return wrapShapeErr(tag, err)
		}
		return e.encode(tag, ns.Deref(v), elem)
	case shape.Dynamic:
		return e.encodeDynamic(tag, v)
	}
	return pathErr(tag, shape.ErrUnsupportedType, fmt.Errorf("descriptor kind %s", d.Kind()))
}

func (e *encoder) encodeLeaf(tag string, v reflect.Value, leaf shape.Leaf) error {
	text, err := leaf.Format(v)
	if err != nil {
		return pathErr(tag, ErrTypeMismatch, err)
	}
	e.out.Put(tag, text)
	return nil
}

func (e *encoder) encodeEnum(tag string, v reflect.Value, es shape.EnumShape) error {
	name, ok := es.ElementName(v)
	if !ok {
		return pathErr(tag, ErrUnknownEnumConstant, fmt.Errorf("%v is not an element of %s", v, es.Name()))
	}
	e.out.Put(tag, name)
	return nil
}

func (e *encoder) encodeRecord(tag string, v reflect.Value, rs shape.RecordShape) error {
	for i := range rs.ElementCount() {
		field := rs.Field(v, i)
		if rs.Options(i).OmitEmpty && field.IsZero() {
			continue
		}
		child := flatmap.Nested(tag, rs.TagFor(i))
		fd, err := rs.Element(i)
		if err != nil {
			return wrapShapeErr(child, err)
		}
		if err := e.encode(child, field, fd); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeCollection(tag string, v reflect.Value, cs shape.CollectionShape) error {
	for i, elem := range cs.Elements(v) {
		child := flatmap.Nested(tag, cs.TagFor(i))
		ed, err := cs.Element(i)
		if err != nil {
			return wrapShapeErr(child, err)
		}
		if err := e.encode(child, elem, ed); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodePolymorphic(tag string, v reflect.Value, ps shape.PolymorphicShape) error {
	if shape.IsNullish(v) {
		return nil
	}
	name, concrete, err := ps.Variant(v)
	if err != nil {
		if errors.Is(err, shape.ErrUnregistered) {
			return pathErr(tag, ErrUnresolvedVariant, err)
		}
		return wrapShapeErr(tag, err)
	}
	e.out.Put(flatmap.Nested(tag, shape.DiscriminatorTag), name)
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return e.encode(tag, v, concrete)
}

// encodeDynamic lays out a schemaless tree from its runtime value.
func (e *encoder) encodeDynamic(tag string, v reflect.Value) error {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if leaf, ok := shape.ScalarOf(v.Type()); ok {
		return e.encodeLeaf(tag, v, leaf)
	}
	switch v.Kind() {
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		byName := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			name, err := dynamicKey(k)
			if err != nil {
				return pathErr(tag, ErrTypeMismatch, err)
			}
			keys = append(keys, name)
			byName[name] = v.MapIndex(k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if err := e.encodeDynamic(flatmap.Nested(tag, k), byName[k]); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := e.encodeDynamic(flatmap.Nested(tag, strconv.Itoa(i)), v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return pathErr(tag, ErrTypeMismatch, fmt.Errorf("%s in a schemaless tree: %w", v.Type(), shape.ErrUnsupportedType))
}

func dynamicKey(k reflect.Value) (string, error) {
	for k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	if leaf, ok := shape.ScalarOf(k.Type()); ok {
		return leaf.Format(k)
	}
	return "", fmt.Errorf("map key %s: %w", k.Type(), shape.ErrUnsupportedType)
}
