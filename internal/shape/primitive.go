package shape

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"fortio.org/safecast"
)

// primitiveShape covers booleans, numbers and strings, including named types
// over them.
type primitiveShape struct {
	typ reflect.Type
}

func (p primitiveShape) Name() string      { return p.typ.String() }
func (p primitiveShape) Kind() Kind        { return Primitive }
func (p primitiveShape) ElementCount() int { return 0 }
func (p primitiveShape) TagFor(int) string { return "" }

func (p primitiveShape) Format(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case reflect.Complex64:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 64), nil
	case reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128), nil
	case reflect.String:
		return v.String(), nil
	}
	return "", fmt.Errorf("format %s: %w", v.Type(), ErrUnsupportedType)
}

func (p primitiveShape) Parse(text string) (reflect.Value, error) {
	var (
		parsed any
		err    error
	)
	switch p.typ.Kind() {
	case reflect.Bool:
		parsed, err = strconv.ParseBool(text)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, err = strconv.ParseInt(text, 10, 64); err == nil {
			parsed, err = narrowInt(p.typ.Kind(), n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var n uint64
		if n, err = strconv.ParseUint(text, 10, 64); err == nil {
			parsed, err = narrowUint(p.typ.Kind(), n)
		}
	case reflect.Float32:
		var f float64
		if f, err = strconv.ParseFloat(text, 32); err == nil {
			parsed = float32(f)
		}
	case reflect.Float64:
		parsed, err = strconv.ParseFloat(text, 64)
	case reflect.Complex64:
		var c complex128
		if c, err = strconv.ParseComplex(text, 64); err == nil {
			parsed = complex64(c)
		}
	case reflect.Complex128:
		parsed, err = strconv.ParseComplex(text, 128)
	case reflect.String:
		parsed = text
	default:
		err = ErrUnsupportedType
	}
	if err != nil {
		return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", text, p.typ, err)
	}
	return reflect.ValueOf(parsed).Convert(p.typ), nil
}

func narrowInt(k reflect.Kind, n int64) (any, error) {
	switch k {
	case reflect.Int8:
		return conv[int8](n)
	case reflect.Int16:
		return conv[int16](n)
	case reflect.Int32:
		return conv[int32](n)
	case reflect.Int:
		return conv[int](n)
	}
	return n, nil
}

func narrowUint(k reflect.Kind, n uint64) (any, error) {
	switch k {
	case reflect.Uint8:
		return conv[uint8](n)
	case reflect.Uint16:
		return conv[uint16](n)
	case reflect.Uint32:
		return conv[uint32](n)
	case reflect.Uint:
		return conv[uint](n)
	case reflect.Uintptr:
		return conv[uintptr](n)
	}
	return n, nil
}

func conv[Out, In safecast.Integer](n In) (any, error) {
	out, err := safecast.Conv[Out](n)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// textLeaf is a type with its own text form, such as time.Time or net.IP.
type textLeaf struct {
	typ reflect.Type
}

func (l textLeaf) Name() string      { return l.typ.String() }
func (l textLeaf) Kind() Kind        { return Primitive }
func (l textLeaf) ElementCount() int { return 0 }
func (l textLeaf) TagFor(int) string { return "" }

func (l textLeaf) Format(v reflect.Value) (string, error) {
	m, ok := v.Interface().(encoding.TextMarshaler)
	if !ok {
		return "", fmt.Errorf("format %s: %w", v.Type(), ErrUnsupportedType)
	}
	text, err := m.MarshalText()
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (l textLeaf) Parse(text string) (reflect.Value, error) {
	p := reflect.New(l.typ)
	u := p.Interface().(encoding.TextUnmarshaler)
	if err := u.UnmarshalText([]byte(text)); err != nil {
		return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", text, l.typ, err)
	}
	return p.Elem(), nil
}
