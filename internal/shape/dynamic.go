package shape

import (
	"reflect"
	"strconv"
)

type dynamicShape struct {
	typ reflect.Type
}

func (d dynamicShape) Name() string            { return d.typ.String() }
func (d dynamicShape) Kind() Kind              { return Dynamic }
func (d dynamicShape) ElementCount() int       { return Unbounded }
func (d dynamicShape) TagFor(index int) string { return strconv.Itoa(index) }
func (d dynamicShape) Type() reflect.Type      { return d.typ }

// Tree returns the descriptor of a schemaless any value.
func Tree() DynamicShape {
	return dynamicShape{typ: reflect.TypeFor[any]()}
}
