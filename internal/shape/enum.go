package shape

import "reflect"

type enumShape struct {
	typ     reflect.Type
	names   []string
	byName  map[string]reflect.Value
	byValue map[any]string
}

func (e *enumShape) Name() string            { return e.typ.String() }
func (e *enumShape) Kind() Kind              { return Enum }
func (e *enumShape) ElementCount() int       { return len(e.names) }
func (e *enumShape) TagFor(index int) string { return e.names[index] }

func (e *enumShape) ElementName(v reflect.Value) (string, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return "", false
	}
	name, ok := e.byValue[v.Interface()]
	return name, ok
}

func (e *enumShape) Element(name string) (reflect.Value, bool) {
	v, ok := e.byName[name]
	return v, ok
}
