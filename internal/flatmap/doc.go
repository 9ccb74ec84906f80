// Package flatmap holds the ordered string-to-string map that sits between the
// structural codec and the text codec.
//
// # Ordering
//
// Keys are kept in first-insertion order. Put on an existing key replaces the
// value in place, so the entry keeps its original position. Writers iterate in
// that order, which makes the byte output deterministic for a given input.
//
// # Tags
//
// Keys are dotted paths ("tags"). Nested builds a child tag from a parent and a
// segment; the root tag is the empty string and has no prefix. PathIndex answers
// "is there anything at or below this tag" in constant time, which the decoder
// needs once per candidate field.
//
// A Map is owned by a single encode or decode call and is not safe for
// concurrent mutation.
package flatmap
