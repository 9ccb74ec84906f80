package proptext

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUnicodeEscape reports a \u escape without four hex digits.
	ErrInvalidUnicodeEscape = errors.New("invalid unicode escape: expected format \\uxxxx")
	// ErrNotLatin1 reports text that cannot be represented as Latin-1 bytes.
	ErrNotLatin1 = errors.New("text is not representable in Latin-1")
)

// SyntaxError locates a read failure in the input.
type SyntaxError struct {
	Line   int // 1-based physical line
	Offset int // 0-based byte offset of the offending byte (or input length at EOF)
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d (offset %d): %v", e.Line, e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
