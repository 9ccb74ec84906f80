package proptext

import (
	"errors"
	"strings"
	"testing"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
)

func mustRead(t *testing.T, input string) *flatmap.Map {
	t.Helper()
	m, err := ReadBytes([]byte(input))
	if err != nil {
		t.Fatalf("ReadBytes(%q): %v", input, err)
	}
	return m
}

func TestReadSingleValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		want  string
	}{
		{"empty key and value", "=", "", ""},
		{"empty key crlf", "=\r\n", "", ""},
		{"empty key lfcr", "=\n\r", "", ""},
		{"spaced separator only", " = ", "", ""},
		{"leading whitespace", " a= b", "a", "b"},
		{"whitespace separator", " a b", "a", "b"},
		{"colon separator", "a:b", "a", "b"},
		{"comment before", "#comment\na=value", "a", "value"},
		{"crlf comments", "#properties file\r\nfred=1\r\n#last comment", "fred", "1"},
		{"unknown escape", "a=\\q", "a", "q"},
		{"backspace escape", "a=x\\by", "a", "x\by"},
		{"continuation", "a=a\\\n   b", "a", "ab"},
		{"crlf continuation", "a=a\\\r\n\t b", "a", "ab"},
		{"hash inside value", "a=b#c", "a", "b#c"},
		{"trailing backslash", "a=b\\", "a", "b\x00"},
		{"latin1 byte", "a=caf\xe9", "a", "café"},
		{"surrogate pair", "a=\\uD83D\\uDE00", "a", "😀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustRead(t, tt.input)
			got, ok := m.Get(tt.key)
			if !ok {
				t.Fatalf("key %q missing from %v", tt.key, m)
			}
			if got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadKeyValueLine(t *testing.T) {
	m := mustRead(t, "key=value\n")
	if !m.Equal(flatmap.Of("key", "value")) {
		t.Errorf("got %v", m)
	}
}

func TestReadDropsComments(t *testing.T) {
	m := mustRead(t, "#comment\nfoo=bar\n! other\n")
	if !m.Equal(flatmap.Of("foo", "bar")) {
		t.Errorf("got %v", m)
	}
}

func TestReadBlankLinesProduceNothing(t *testing.T) {
	m := mustRead(t, "\n\n   \n\t\n")
	if m.Len() != 0 {
		t.Errorf("got %v, want empty", m)
	}
}

func TestReadDuplicateKeepsPosition(t *testing.T) {
	m := mustRead(t, "a=1\nb=2\na=3\n")
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys = %v", keys)
	}
	if v, _ := m.Get("a"); v != "3" {
		t.Errorf("a = %q, want 3", v)
	}
}

func TestReadUnicodeEscape(t *testing.T) {
	m := mustRead(t, "a=\\u1234z")
	v, _ := m.Get("a")
	if v != "\u1234z" {
		t.Errorf("value = %q", v)
	}

	for _, input := range []string{"a=\\u123", "a=\\u123z", "a=\\u", "a=\\ug000"} {
		_, err := ReadBytes([]byte(input))
		if !errors.Is(err, ErrInvalidUnicodeEscape) {
			t.Errorf("ReadBytes(%q) error = %v, want ErrInvalidUnicodeEscape", input, err)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("ReadBytes(%q) error %T is not *SyntaxError", input, err)
		}
	}
}

func TestReadSyntaxErrorPosition(t *testing.T) {
	_, err := ReadBytes([]byte("ok=1\nbad=\\u12x4\n"))
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v", err)
	}
	if se.Line != 2 {
		t.Errorf("Line = %d, want 2", se.Line)
	}
	if se.Offset != 13 {
		t.Errorf("Offset = %d, want 13", se.Offset)
	}
}

func TestReadGrowsBuffer(t *testing.T) {
	long := strings.Repeat("v", initialBufferSize*5+3)
	m := mustRead(t, "k="+long)
	if v, _ := m.Get("k"); v != long {
		t.Errorf("long value truncated: len %d", len(v))
	}
}

func TestReadLatin1String(t *testing.T) {
	m, err := ReadString("k=é")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Get("k"); v != "é" {
		t.Errorf("value = %q", v)
	}
	if _, err := ReadString("k=€"); !errors.Is(err, ErrNotLatin1) {
		t.Errorf("error = %v, want ErrNotLatin1", err)
	}
}

func TestReadGradleWrapper(t *testing.T) {
	input := strings.Join([]string{
		"#Fri Jul 11 11:11:51 CEST 2025",
		"distributionBase=GRADLE_USER_HOME",
		"distributionPath=wrapper/dists",
		`distributionUrl=https\://services.gradle.org/distributions/gradle-9.0.0-rc-1-bin.zip`,
		"zipStoreBase=GRADLE_USER_HOME",
		"zipStorePath=wrapper/dists",
		"",
	}, "\n")
	want := flatmap.Of(
		"distributionBase", "GRADLE_USER_HOME",
		"distributionPath", "wrapper/dists",
		"distributionUrl", "https://services.gradle.org/distributions/gradle-9.0.0-rc-1-bin.zip",
		"zipStoreBase", "GRADLE_USER_HOME",
		"zipStorePath", "wrapper/dists",
	)
	if got := mustRead(t, input); !got.Equal(want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

var specialProperties = strings.Join([]string{
	"",
	"        ",
	"",
	"    ",
	"    \t\t",
	`   \ \r \n \t \f`,
	"   ",
	"            \t\t\t\t\t",
	"! dshfjklahfjkldashgjl;as",
	"     #jdfagdfjagkdjfghksdajfd",
	"     ",
	"!!properties",
	"",
	"a=a",
	"b bb as,dn   ",
	`c\r\ \t\nu =:: cu`,
	`bu= b\`,
	"\t\tu",
	`d=d\r\ne=e`,
	`f   :f\`,
	`f\`,
	"\t\t\tf",
	"g\t\tg",
	`h\u0020h`,
	`\   i=i`,
	`j=\   j`,
	`space=\   c`,
	"",
	`dblbackslash=\\`,
	"                         ",
	"        ",
}, "\n")

func TestReadSpecialCharacters(t *testing.T) {
	m := mustRead(t, specialProperties)
	want := map[string]string{
		" \r":          "\n \t \f",
		"a":            "a",
		"b":            "bb as,dn   ",
		"c\r \t\nu":    ":: cu",
		"bu":           "bu",
		"d":            "d\r\ne=e",
		"f":            "fff",
		"g":            "g",
		"h h":          "",
		" ":            "i=i",
		"j":            "   j",
		"space":        "   c",
		"dblbackslash": "\\",
	}
	for k, v := range want {
		got, ok := m.Get(k)
		if !ok {
			t.Errorf("key %q missing", k)
			continue
		}
		if got != v {
			t.Errorf("%q = %q, want %q", k, got, v)
		}
	}
	if m.Len() != len(want) {
		t.Errorf("Len() = %d, want %d: %v", m.Len(), len(want), m)
	}
}
