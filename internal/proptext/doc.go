// Package proptext reads and writes the Java .properties text encoding.
//
// # Reading
//
// Read is a single-pass state machine over a byte stream. Every byte is one
// Latin-1 character; there is no multi-byte decoding. A logical line is
// committed as key -> value when its terminator is seen (or at end of input).
// The grammar follows java.util.Properties.load as adapted by Apache Harmony:
//
//   - '#' or '!' as the first character of a logical line starts a comment
//   - '\' escapes the next character; \t \n \f \r \b map to control characters,
//     \uXXXX takes exactly four hex digits, anything else is taken literally
//   - '\' before a line terminator joins the next physical line and drops its
//     leading whitespace
//   - the key ends at the first unescaped '=', ':' or whitespace; the separator
//     run (whitespace, at most one '=' or ':', whitespace) is dropped
//   - a lone '\' at end of input yields a NUL character
//
// Later duplicates of a key overwrite the value in place.
//
// # Writing
//
// Write emits one key=value line per entry, terminated by '\n', with no header.
// Every space in a key is escaped; only a single leading space is escaped in a
// value. Characters outside 0x20-0x7E are written as \uXXXX with uppercase hex,
// so the output is always plain ASCII.
package proptext
