// Package props is the entry point of the properties codec. A Format pairs a
// shape registry with a tracer and converts values to and from properties
// text, byte slices, streams and flat maps.
//
//	f := props.New(props.WithRegistry(reg))
//	data, err := f.EncodeToBytes(ctx, cfg, nil)
//	back, err := props.Decode[Config](ctx, f, data)
//
// Bytes are Latin-1: every character outside printable ASCII is written as a
// \uXXXX escape, so encoded output is also valid UTF-8.
package props
