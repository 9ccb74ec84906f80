package shape

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// sequenceShape covers slices and arrays; element i is tagged "i".
type sequenceShape struct {
	typ  reflect.Type
	elem *lazy
}

func (s *sequenceShape) Name() string            { return s.typ.String() }
func (s *sequenceShape) Kind() Kind              { return Collection }
func (s *sequenceShape) ElementCount() int       { return Unbounded }
func (s *sequenceShape) TagFor(index int) string { return strconv.Itoa(index) }
func (s *sequenceShape) IsMap() bool             { return false }

func (s *sequenceShape) Element(int) (Descriptor, error) {
	return s.elem.get()
}

func (s *sequenceShape) Elements(v reflect.Value) []reflect.Value {
	if IsNullish(v) {
		return nil
	}
	out := make([]reflect.Value, v.Len())
	for i := range out {
		out[i] = v.Index(i)
	}
	return out
}

func (s *sequenceShape) Build(elems []reflect.Value) (reflect.Value, error) {
	if s.typ.Kind() == reflect.Array {
		if len(elems) > s.typ.Len() {
			return reflect.Value{}, fmt.Errorf("%s holds %d elements, got %d", s.typ, s.typ.Len(), len(elems))
		}
		arr := reflect.New(s.typ).Elem()
		for i, e := range elems {
			arr.Index(i).Set(e)
		}
		return arr, nil
	}
	out := reflect.MakeSlice(s.typ, len(elems), len(elems))
	for i, e := range elems {
		out.Index(i).Set(e)
	}
	return out, nil
}

// mapShape lays entries out as key at 2i and value at 2i+1, keys sorted.
type mapShape struct {
	typ   reflect.Type
	key   *lazy
	value *lazy
}

func (m *mapShape) Name() string            { return m.typ.String() }
func (m *mapShape) Kind() Kind              { return Collection }
func (m *mapShape) ElementCount() int       { return Unbounded }
func (m *mapShape) TagFor(index int) string { return strconv.Itoa(index) }
func (m *mapShape) IsMap() bool             { return true }

func (m *mapShape) Element(index int) (Descriptor, error) {
	if index%2 == 0 {
		return m.key.get()
	}
	return m.value.get()
}

func (m *mapShape) Elements(v reflect.Value) []reflect.Value {
	if IsNullish(v) {
		return nil
	}
	keys := v.MapKeys()
	slices.SortFunc(keys, compareKeys)
	out := make([]reflect.Value, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, v.MapIndex(k))
	}
	return out
}

func (m *mapShape) Build(elems []reflect.Value) (reflect.Value, error) {
	if len(elems)%2 != 0 {
		return reflect.Value{}, fmt.Errorf("%s: key without value", m.typ)
	}
	out := reflect.MakeMapWithSize(m.typ, len(elems)/2)
	for i := 0; i < len(elems); i += 2 {
		out.SetMapIndex(elems[i], elems[i+1])
	}
	return out, nil
}

func compareKeys(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.String:
		return strings.Compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.Bool:
		ai, bi := 0, 0
		if a.Bool() {
			ai = 1
		}
		if b.Bool() {
			bi = 1
		}
		return cmp.Compare(ai, bi)
	}
	return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}
