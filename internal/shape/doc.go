// Package shape describes how Go values are laid out in a flat map.
//
// A Descriptor states a shape's Kind, its element count and the tag segment of
// each element. Each kind has a visitor interface (Leaf, EnumShape,
// RecordShape, CollectionShape, PolymorphicShape, NullableShape, DynamicShape)
// that the flattening codec calls to read and build values; the codec never
// inspects Go types itself.
//
// Descriptors for Go types are produced by a Registry:
//
//	reg := shape.NewRegistry()
//	shape.RegisterEnum(reg, Red, Green, Blue)
//	shape.RegisterVariant[Shape](reg, "circle", Circle{})
//	d, err := shape.For[Drawing](reg)
//
// Struct fields are named by the `props` tag ("name,required,omitempty", or
// "-" to skip) and default to the Go field name. Types implementing both
// encoding.TextMarshaler and encoding.TextUnmarshaler (on the pointer) are
// leaves. Interface types with registered variants are polymorphic; the empty
// interface without variants is a schemaless tree (DynamicShape).
//
// Register enums and variants before the first call to Of: descriptors are
// cached per type and record fields resolve their own descriptors once.
package shape
