package proptext

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
)

func TestWriteEscapesKeySpaces(t *testing.T) {
	m := flatmap.Of(
		"Property A", "aye",
		"Property B", "bee",
		"Property C", "see",
	)
	want := "Property\\ A=aye\nProperty\\ B=bee\nProperty\\ C=see\n"
	if got := WriteString(m); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAppendEntry(t *testing.T) {
	tests := []struct {
		name       string
		key, value string
		want       string
	}{
		{"plain", "a", "x", "a=x\n"},
		{"nested tag", "nested.b", "y", "nested.b=y\n"},
		{"leading value space", "k", " v w", "k=\\ v w\n"},
		{"only first value space", "k", "  v", "k=\\  v\n"},
		{"key spaces", "a b c", "v", "a\\ b\\ c=v\n"},
		{"controls", "k", "\t\n\f\r", "k=\\t\\n\\f\\r\n"},
		{"specials", "a=b:c", "#!\\", "a\\=b\\:c=\\#\\!\\\\\n"},
		{"url", "distributionUrl", "https://x", "distributionUrl=https\\://x\n"},
		{"latin1", "k", "é", "k=\\u00E9\n"},
		{"nul", "k", "\x00", "k=\\u0000\n"},
		{"bmp", "k", "\u1234", "k=\\u1234\n"},
		{"astral", "k", "😀", "k=\\uD83D\\uDE00\n"},
		{"empty", "", "", "=\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(AppendEntry(nil, tt.key, tt.value)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := flatmap.Of(
		"Property A", "aye",
		" lead", " value with spaces ",
		"tabs\there", "line1\nline2\r\n",
		"sep=:", "#!=:\\",
		"unicode", "café ünïcödé ☃ 😀",
		"", "empty key",
		"empty value", "",
	)
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatal(err)
	}
	back, err := ReadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !back.Equal(m) {
		t.Errorf("round trip mismatch\n got %v\nwant %v", back, m)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestWritePropagatesErrors(t *testing.T) {
	if err := Write(failingWriter{}, flatmap.Of("a", "b")); err == nil {
		t.Error("expected write error")
	}
}
