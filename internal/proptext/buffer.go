package proptext

import "unicode/utf16"

const initialBufferSize = 40

// lineBuffer accumulates the 16-bit characters of one logical line. Capacity
// doubles whenever it is exhausted.
type lineBuffer struct {
	data []uint16
	n    int
}

func newLineBuffer() *lineBuffer {
	return &lineBuffer{data: make([]uint16, initialBufferSize)}
}

func (b *lineBuffer) put(ch uint16) {
	if b.n == len(b.data) {
		grown := make([]uint16, len(b.data)*2)
		copy(grown, b.data[:b.n])
		b.data = grown
	}
	b.data[b.n] = ch
	b.n++
}

func (b *lineBuffer) len() int { return b.n }

func (b *lineBuffer) reset() { b.n = 0 }

// split returns the line as key and value strings, cut at keyLen.
func (b *lineBuffer) split(keyLen int) (key, value string) {
	return string(utf16.Decode(b.data[:keyLen])), string(utf16.Decode(b.data[keyLen:b.n]))
}
