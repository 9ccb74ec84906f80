package proptext

import (
	"bytes"
	"io"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
)

type scanMode uint8

const (
	modeNone     scanMode = iota
	modeSlash             // just consumed an unescaped '\'
	modeUnicode           // inside \uXXXX
	modeContinue          // '\' + '\r' seen, a '\n' may follow
	modeKeyDone           // key ended on whitespace, separator may follow
	modeIgnore            // skipping leading whitespace of a continued line
)

// Read parses the properties text from src.
func Read(src io.ByteReader) (*flatmap.Map, error) {
	s := scanner{
		cur:    newCursor(src),
		buf:    newLineBuffer(),
		keyLen: -1,
		first:  true,
		result: flatmap.New(16),
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.result, nil
}

// ReadBytes parses data as Latin-1 properties text.
func ReadBytes(data []byte) (*flatmap.Map, error) {
	return Read(bytes.NewReader(data))
}

// ReadString parses text after converting it to Latin-1 bytes.
func ReadString(text string) (*flatmap.Map, error) {
	data, err := EncodeLatin1(text)
	if err != nil {
		return nil, err
	}
	return ReadBytes(data)
}

// scanner is the per-call state of Read.
type scanner struct {
	cur     *cursor
	buf     *lineBuffer
	mode    scanMode
	unicode uint16
	digits  int
	keyLen  int  // -1 while the key is still being read
	first   bool // next character is the first of a logical line
	result  *flatmap.Map
}

func (s *scanner) run() error {
	for {
		b, ok := s.cur.Next()
		if !ok {
			if err := s.cur.Err(); err != nil {
				return err
			}
			if s.mode == modeUnicode && s.digits < 4 {
				return &SyntaxError{Line: s.cur.Line, Offset: s.cur.Off, Err: ErrInvalidUnicodeEscape}
			}
			if s.mode == modeSlash {
				s.buf.put(0)
			}
			break
		}
		ch := uint16(b)

		if s.mode == modeUnicode {
			d, isHex := hexValue(b)
			if !isHex {
				return s.cur.errorf(ErrInvalidUnicodeEscape)
			}
			s.unicode = s.unicode<<4 | d
			s.digits++
			if s.digits < 4 {
				continue
			}
			s.mode = modeNone
			s.buf.put(s.unicode)
			continue
		}

		if s.mode == modeSlash {
			s.mode = modeNone
			switch b {
			case '\r':
				s.mode = modeContinue
				continue
			case '\n':
				s.mode = modeIgnore
				continue
			case 'b':
				ch = '\b'
			case 'f':
				ch = '\f'
			case 'n':
				ch = '\n'
			case 'r':
				ch = '\r'
			case 't':
				ch = '\t'
			case 'u':
				s.mode = modeUnicode
				s.unicode = 0
				s.digits = 0
				continue
			}
		} else {
			switch b {
			case '#', '!':
				if s.first {
					s.cur.SkipLine()
					continue
				}
			case '\n', '\r':
				if b == '\n' && s.mode == modeContinue {
					s.mode = modeIgnore
					continue
				}
				s.mode = modeNone
				s.first = true
				if s.buf.len() > 0 || s.keyLen == 0 {
					if s.keyLen == -1 {
						s.keyLen = s.buf.len()
					}
					s.commit()
				}
				s.keyLen = -1
				s.buf.reset()
				continue
			case '\\':
				if s.mode == modeKeyDone {
					s.keyLen = s.buf.len()
				}
				s.mode = modeSlash
				continue
			case ':', '=':
				if s.keyLen == -1 {
					s.mode = modeNone
					s.keyLen = s.buf.len()
					continue
				}
			}
			if isSpace(b) {
				if s.mode == modeContinue {
					s.mode = modeIgnore
				}
				if s.buf.len() == 0 || s.buf.len() == s.keyLen || s.mode == modeIgnore {
					continue
				}
				if s.keyLen == -1 {
					s.mode = modeKeyDone
					continue
				}
			}
			if s.mode == modeIgnore || s.mode == modeContinue {
				s.mode = modeNone
			}
		}

		s.first = false
		if s.mode == modeKeyDone {
			s.keyLen = s.buf.len()
			s.mode = modeNone
		}
		s.buf.put(ch)
	}

	if s.keyLen == -1 && s.buf.len() > 0 {
		s.keyLen = s.buf.len()
	}
	if s.keyLen >= 0 {
		s.commit()
	}
	return nil
}

func (s *scanner) commit() {
	key, value := s.buf.split(s.keyLen)
	s.result.Put(key, value)
}

func hexValue(b byte) (uint16, bool) {
	switch {
	case b >= '0' && b <= '9':
		return uint16(b - '0'), true
	case b >= 'a' && b <= 'f':
		return uint16(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return uint16(b-'A') + 10, true
	}
	return 0, false
}

// isSpace matches the Latin-1 whitespace set: \t \n \v \f \r, the
// information separators 0x1C-0x1F, space and no-break space.
func isSpace(b byte) bool {
	switch {
	case b >= 0x09 && b <= 0x0D:
		return true
	case b >= 0x1C && b <= 0x20:
		return true
	case b == 0xA0:
		return true
	}
	return false
}
