// Package flat maps structured values onto flat maps of dotted tags and back.
//
// Encode walks a value top-down under the guidance of a shape.Descriptor:
// leaves become "tag -> text", records recurse with "tag.field", sequences with
// "tag.0", "tag.1", ... and maps with the key at "tag.2i" and the value at
// "tag.2i+1". A polymorphic value writes "tag.type = discriminator" and then
// its concrete fields under the same tag. Null values write nothing.
//
// Decode reverses the walk. For each record or collection it keeps a cursor
// over the descriptor's elements and selects the next element whose tag is
// present in the map (exactly, or as a prefix followed by "."). Records skip
// absent fields; collections stop at the first absent index, so a gap silently
// truncates.
//
// Failures are reported as *PathError values wrapping one of the Err*
// sentinels; a failing call returns no partial result.
package flat
