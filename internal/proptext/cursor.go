package proptext

import (
	"errors"
	"io"
)

// cursor pulls one byte at a time and tracks the position for errors.
type cursor struct {
	src  io.ByteReader
	Off  int
	Line int
	err  error
}

func newCursor(src io.ByteReader) *cursor {
	return &cursor{src: src, Line: 1}
}

// Next returns the next byte, or ok=false at end of input or on a read error.
// The read error, if any, is kept in Err.
func (c *cursor) Next() (b byte, ok bool) {
	if c.err != nil {
		return 0, false
	}
	b, err := c.src.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		return 0, false
	}
	c.Off++
	if b == '\n' {
		c.Line++
	}
	return b, true
}

// Err returns the first non-EOF read error.
func (c *cursor) Err() error { return c.err }

// SkipLine consumes bytes up to and including the next '\r' or '\n'.
func (c *cursor) SkipLine() {
	for {
		b, ok := c.Next()
		if !ok || b == '\r' || b == '\n' {
			return
		}
	}
}

// errorf wraps err with the position of the byte just consumed.
func (c *cursor) errorf(err error) *SyntaxError {
	off := c.Off - 1
	if off < 0 {
		off = 0
	}
	return &SyntaxError{Line: c.Line, Offset: off, Err: err}
}
