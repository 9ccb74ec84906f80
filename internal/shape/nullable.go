package shape

import "reflect"

type nullableShape struct {
	typ  reflect.Type
	elem *lazy
}

func (n *nullableShape) Name() string      { return n.typ.String() }
func (n *nullableShape) Kind() Kind        { return Nullable }
func (n *nullableShape) ElementCount() int { return 1 }
func (n *nullableShape) TagFor(int) string { return "" }

func (n *nullableShape) Elem() (Descriptor, error) { return n.elem.get() }

func (n *nullableShape) IsNull(v reflect.Value) bool { return !v.IsValid() || v.IsNil() }

func (n *nullableShape) Deref(v reflect.Value) reflect.Value { return v.Elem() }

func (n *nullableShape) Wrap(elem reflect.Value) reflect.Value {
	p := reflect.New(n.typ.Elem())
	p.Elem().Set(elem)
	return p
}

func (n *nullableShape) Null() reflect.Value { return reflect.Zero(n.typ) }
