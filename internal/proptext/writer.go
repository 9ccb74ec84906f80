package proptext

import (
	"io"
	"strings"
	"unicode/utf16"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
)

const hexDigits = "0123456789ABCDEF"

// Write emits every entry of m as an escaped key=value line.
func Write(w io.Writer, m *flatmap.Map) error {
	buf := make([]byte, 0, 200)
	for k, v := range m.All() {
		buf = AppendEntry(buf[:0], k, v)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteString returns the text Write would produce.
func WriteString(m *flatmap.Map) string {
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = Write(&sb, m)
	return sb.String()
}

// AppendEntry appends one escaped "key=value\n" line to dst.
func AppendEntry(dst []byte, key, value string) []byte {
	dst = appendEscaped(dst, key, true)
	dst = append(dst, '=')
	dst = appendEscaped(dst, value, false)
	return append(dst, '\n')
}

func appendEscaped(dst []byte, s string, isKey bool) []byte {
	if !isKey && strings.HasPrefix(s, " ") {
		dst = append(dst, '\\', ' ')
		s = s[1:]
	}
	for _, r := range s {
		switch r {
		case '\t':
			dst = append(dst, '\\', 't')
			continue
		case '\n':
			dst = append(dst, '\\', 'n')
			continue
		case '\f':
			dst = append(dst, '\\', 'f')
			continue
		case '\r':
			dst = append(dst, '\\', 'r')
			continue
		case '\\', '#', '!', '=', ':':
			dst = append(dst, '\\')
		case ' ':
			if isKey {
				dst = append(dst, '\\')
			}
		}
		if r >= ' ' && r <= '~' {
			dst = append(dst, byte(r))
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			dst = appendUnicodeEscape(dst, uint16(hi))
			dst = appendUnicodeEscape(dst, uint16(lo))
			continue
		}
		dst = appendUnicodeEscape(dst, uint16(r))
	}
	return dst
}

func appendUnicodeEscape(dst []byte, ch uint16) []byte {
	return append(dst, '\\', 'u',
		hexDigits[ch>>12&0xF],
		hexDigits[ch>>8&0xF],
		hexDigits[ch>>4&0xF],
		hexDigits[ch&0xF],
	)
}
