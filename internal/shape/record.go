package shape

import (
	"reflect"
	"strings"
)

type recordField struct {
	name  string
	index int
	opts  FieldOptions
	desc  *lazy
}

type recordShape struct {
	typ    reflect.Type
	fields []recordField
}

func newRecordShape(r *Registry, t reflect.Type) *recordShape {
	rs := &recordShape{typ: t}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, skip := parseTag(f)
		if skip {
			continue
		}
		rs.fields = append(rs.fields, recordField{
			name:  name,
			index: i,
			opts:  opts,
			desc:  newLazy(r, f.Type),
		})
	}
	return rs
}

// parseTag reads `props:"name,required,omitempty"`.
func parseTag(f reflect.StructField) (name string, opts FieldOptions, skip bool) {
	tag, ok := f.Tag.Lookup("props")
	if !ok {
		return f.Name, opts, false
	}
	if tag == "-" {
		return "", opts, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case "required":
			opts.Required = true
		case "omitempty":
			opts.OmitEmpty = true
		}
	}
	return name, opts, false
}

func (s *recordShape) Name() string            { return s.typ.String() }
func (s *recordShape) Kind() Kind              { return Record }
func (s *recordShape) ElementCount() int       { return len(s.fields) }
func (s *recordShape) TagFor(index int) string { return s.fields[index].name }

func (s *recordShape) Element(index int) (Descriptor, error) {
	return s.fields[index].desc.get()
}

func (s *recordShape) Options(index int) FieldOptions {
	return s.fields[index].opts
}

func (s *recordShape) Field(rec reflect.Value, index int) reflect.Value {
	return rec.Field(s.fields[index].index)
}

func (s *recordShape) New() reflect.Value {
	return reflect.New(s.typ).Elem()
}

func (s *recordShape) SetField(rec reflect.Value, index int, v reflect.Value) {
	rec.Field(s.fields[index].index).Set(v)
}
