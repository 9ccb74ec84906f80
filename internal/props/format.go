package props

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/bishiboosh/properties-serializer/internal/flat"
	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/proptext"
	"github.com/bishiboosh/properties-serializer/internal/shape"
	"github.com/bishiboosh/properties-serializer/internal/trace"
)

// ErrInvalidTarget is returned by Unmarshal for a target that is not a
// non-nil pointer.
var ErrInvalidTarget = errors.New("props: target must be a non-nil pointer")

// Format is a configured codec. It is safe for concurrent use.
type Format struct {
	reg    *shape.Registry
	tracer trace.Tracer
}

// Option configures a Format.
type Option func(*Format)

// WithRegistry sets the registry holding enum and variant registrations.
func WithRegistry(r *shape.Registry) Option {
	return func(f *Format) {
		if r != nil {
			f.reg = r
		}
	}
}

// WithTracer sets the tracer used when the call context carries none.
func WithTracer(t trace.Tracer) Option {
	return func(f *Format) {
		if t != nil {
			f.tracer = t
		}
	}
}

// New returns a Format with a fresh registry and no tracing unless overridden.
func New(opts ...Option) *Format {
	f := &Format{reg: shape.NewRegistry(), tracer: trace.Nop}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Default is the Format used by Marshal and Unmarshal.
var Default = New()

// Registry returns the registry of f.
func (f *Format) Registry() *shape.Registry { return f.reg }

// call opens the span of one public operation.
func (f *Format) call(ctx context.Context, name string) (context.Context, *trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !trace.FromContext(ctx).Enabled() && f.tracer.Enabled() {
		ctx = trace.WithTracer(ctx, f.tracer)
	}
	return trace.Start(ctx, trace.ScopeCall, name)
}

func (f *Format) descriptorOf(rv reflect.Value, d shape.Descriptor) (shape.Descriptor, error) {
	if d != nil {
		return d, nil
	}
	if !rv.IsValid() {
		return nil, fmt.Errorf("props: nil value without descriptor: %w", shape.ErrUnsupportedType)
	}
	return f.reg.Of(rv.Type())
}

func (f *Format) encode(ctx context.Context, v any, d shape.Descriptor) (*flatmap.Map, error) {
	rv := reflect.ValueOf(v)
	d, err := f.descriptorOf(rv, d)
	if err != nil {
		return nil, err
	}
	_, span := trace.Start(ctx, trace.ScopePhase, "encode")
	m, err := flat.Encode(rv, d)
	if err == nil {
		span.WithExtra("keys", strconv.Itoa(m.Len()))
	}
	span.EndErr(err)
	return m, err
}

func write(ctx context.Context, w io.Writer, m *flatmap.Map) error {
	_, span := trace.Start(ctx, trace.ScopePhase, "write")
	err := proptext.Write(w, m)
	span.EndErr(err)
	return err
}

func read(ctx context.Context, r io.ByteReader) (*flatmap.Map, error) {
	ctx, span := trace.Start(ctx, trace.ScopePhase, "read")
	m, err := proptext.Read(r)
	if err != nil {
		span.EndErr(err)
		return nil, err
	}
	t, parent := trace.FromContext(ctx), trace.CurrentSpan(ctx).SpanID
	for k := range m.All() {
		trace.Point(t, trace.ScopeEntry, "entry", k, parent)
	}
	span.WithExtra("keys", strconv.Itoa(m.Len())).End("")
	return m, nil
}

func decode(ctx context.Context, m *flatmap.Map, d shape.Descriptor) (reflect.Value, error) {
	if d == nil {
		return reflect.Value{}, fmt.Errorf("props: decode without descriptor: %w", shape.ErrUnsupportedType)
	}
	_, span := trace.Start(ctx, trace.ScopePhase, "decode")
	v, err := flat.Decode(m, d)
	span.EndErr(err)
	return v, err
}

func result(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// EncodeToMap flattens v. A nil d is derived from the dynamic type of v.
func (f *Format) EncodeToMap(ctx context.Context, v any, d shape.Descriptor) (m *flatmap.Map, err error) {
	ctx, span := f.call(ctx, "EncodeToMap")
	defer func() { span.EndErr(err) }()
	return f.encode(ctx, v, d)
}

// EncodeTo writes v as properties text to w.
func (f *Format) EncodeTo(ctx context.Context, w io.Writer, v any, d shape.Descriptor) (err error) {
	ctx, span := f.call(ctx, "EncodeTo")
	defer func() { span.EndErr(err) }()
	m, err := f.encode(ctx, v, d)
	if err != nil {
		return err
	}
	return write(ctx, w, m)
}

// EncodeToBytes returns v as properties text.
func (f *Format) EncodeToBytes(ctx context.Context, v any, d shape.Descriptor) (data []byte, err error) {
	ctx, span := f.call(ctx, "EncodeToBytes")
	defer func() { span.EndErr(err) }()
	m, err := f.encode(ctx, v, d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := write(ctx, &buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeToText returns v as properties text.
func (f *Format) EncodeToText(ctx context.Context, v any, d shape.Descriptor) (string, error) {
	data, err := f.EncodeToBytes(ctx, v, d)
	return string(data), err
}

// DecodeFromMap rebuilds a value of shape d from m.
func (f *Format) DecodeFromMap(ctx context.Context, m *flatmap.Map, d shape.Descriptor) (v any, err error) {
	ctx, span := f.call(ctx, "DecodeFromMap")
	defer func() { span.EndErr(err) }()
	rv, err := decode(ctx, m, d)
	return result(rv), err
}

// DecodeFrom reads properties text from r and decodes it as d. r is read to
// the end.
func (f *Format) DecodeFrom(ctx context.Context, r io.Reader, d shape.Descriptor) (v any, err error) {
	ctx, span := f.call(ctx, "DecodeFrom")
	defer func() { span.EndErr(err) }()
	rv, err := f.decodeStream(ctx, r, d)
	return result(rv), err
}

// DecodeFromBytes decodes Latin-1 properties text.
func (f *Format) DecodeFromBytes(ctx context.Context, data []byte, d shape.Descriptor) (v any, err error) {
	ctx, span := f.call(ctx, "DecodeFromBytes")
	defer func() { span.EndErr(err) }()
	rv, err := f.decodeStream(ctx, bytes.NewReader(data), d)
	return result(rv), err
}

// DecodeFromText decodes properties text held in a string. Characters above
// U+00FF are rejected with proptext.ErrNotLatin1.
func (f *Format) DecodeFromText(ctx context.Context, text string, d shape.Descriptor) (v any, err error) {
	ctx, span := f.call(ctx, "DecodeFromText")
	defer func() { span.EndErr(err) }()
	data, err := proptext.EncodeLatin1(text)
	if err != nil {
		return nil, err
	}
	rv, err := f.decodeStream(ctx, bytes.NewReader(data), d)
	return result(rv), err
}

func (f *Format) decodeStream(ctx context.Context, r io.Reader, d shape.Descriptor) (reflect.Value, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	m, err := read(ctx, br)
	if err != nil {
		return reflect.Value{}, err
	}
	return decode(ctx, m, d)
}

// Unmarshal decodes data into the value target points to.
func (f *Format) Unmarshal(ctx context.Context, data []byte, target any) (err error) {
	ctx, span := f.call(ctx, "Unmarshal")
	defer func() { span.EndErr(err) }()

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w, got %T", ErrInvalidTarget, target)
	}
	d, err := f.reg.Of(rv.Type().Elem())
	if err != nil {
		return err
	}
	v, err := f.decodeStream(ctx, bytes.NewReader(data), d)
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// Decode decodes data as a T.
func Decode[T any](ctx context.Context, f *Format, data []byte) (T, error) {
	var out T
	err := f.Unmarshal(ctx, data, &out)
	return out, err
}

// Marshal encodes v with Default.
func Marshal(v any) ([]byte, error) {
	return Default.EncodeToBytes(context.Background(), v, nil)
}

// Unmarshal decodes data into target with Default.
func Unmarshal(data []byte, target any) error {
	return Default.Unmarshal(context.Background(), data, target)
}
