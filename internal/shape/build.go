package shape

import (
	"encoding"
	"fmt"
	"reflect"
)

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

func (r *Registry) build(t reflect.Type) (Descriptor, error) {
	if e, ok := r.enum(t); ok {
		return e, nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		return &nullableShape{typ: t, elem: newLazy(r, t.Elem())}, nil
	case reflect.Interface:
		if r.hasVariants(t) || t.NumMethod() > 0 {
			return &polyShape{reg: r, base: t}, nil
		}
		return dynamicShape{typ: t}, nil
	}
	if leaf, ok := ScalarOf(t); ok {
		return leaf, nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return newRecordShape(r, t), nil
	case reflect.Slice, reflect.Array:
		return &sequenceShape{typ: t, elem: newLazy(r, t.Elem())}, nil
	case reflect.Map:
		return &mapShape{typ: t, key: newLazy(r, t.Key()), value: newLazy(r, t.Elem())}, nil
	}
	return nil, fmt.Errorf("%s: %w", t, ErrUnsupportedType)
}

// ScalarOf returns the leaf descriptor of t when t is a primitive or has its
// own text form.
func ScalarOf(t reflect.Type) (Leaf, bool) {
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer &&
		t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return textLeaf{typ: t}, true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return primitiveShape{typ: t}, true
	}
	return nil, false
}
