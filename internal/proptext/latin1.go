package proptext

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// EncodeLatin1 converts text to ISO-8859-1 bytes, one byte per rune.
func EncodeLatin1(text string) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotLatin1, err)
	}
	return out, nil
}

// DecodeLatin1 converts ISO-8859-1 bytes to a UTF-8 string.
func DecodeLatin1(data []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
