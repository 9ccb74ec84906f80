package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/proptext"
)

func init() {
	color.NoColor = true
}

// run executes the CLI with an empty props.toml so that no file above the
// test directory is picked up. It returns what the command wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "props.toml")
	if err := os.WriteFile(cfg, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := execute(context.Background(), append([]string{"--color", "off", "--config", cfg}, args...))
	return out.String(), err
}

// resetFlags puts every flag back to its default; cobra keeps parsed values
// between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeProps(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGetSetUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.properties")

	if _, err := run(t, "set", path, "server.port", "8080"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "set", path, "server name", "münster"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "server.port=8080\nserver\\ name=m\\u00FCnster\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}

	out, err := run(t, "get", path, "server name")
	if err != nil || out != "münster\n" {
		t.Errorf("get = %q, %v", out, err)
	}

	if _, err := run(t, "unset", path, "server.port"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "get", path, "server.port"); !errors.Is(err, errKeyNotFound) {
		t.Errorf("get after unset error = %v", err)
	}
	if _, err := run(t, "unset", path, "server.port"); !errors.Is(err, errKeyNotFound) {
		t.Errorf("second unset error = %v", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeProps(t, dir, "good.properties", "a=1\nb=2\n")
	writeProps(t, dir, "nested/bad.properties", "ok=1\nbad=\\u12x4\n")
	writeProps(t, dir, "notes.txt", "\\u")

	out, err := run(t, "check", "--jobs", "2", dir)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, "ok   "+filepath.Join(dir, "good.properties")+" (2 keys)") {
		t.Errorf("output misses the good file:\n%s", out)
	}
	if !strings.Contains(out, filepath.Join(dir, "nested", "bad.properties")+":2: invalid unicode escape") {
		t.Errorf("output misses the syntax error:\n%s", out)
	}
	if !strings.Contains(out, "1 of 2 files failed") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestFmt(t *testing.T) {
	dir := t.TempDir()
	messy := writeProps(t, dir, "messy.properties", "# comment\nkey : value\nlong = a\\\n    b\n")
	clean := writeProps(t, dir, "clean.properties", "a=1\n")

	out, err := run(t, "fmt", "--check", messy, clean)
	if !errors.Is(err, errNotFormatted) {
		t.Fatalf("fmt --check error = %v", err)
	}
	if strings.TrimSpace(out) != messy {
		t.Errorf("fmt --check listed %q", out)
	}

	if _, err := run(t, "fmt", "--check=false", messy, clean); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(messy)
	if string(data) != "key=value\nlong=ab\n" {
		t.Errorf("formatted = %q", data)
	}
}

func TestFlattenExpand(t *testing.T) {
	dir := t.TempDir()
	src := writeProps(t, dir, "app.toml", `
name = "svc"
ports = [80, 443]

[db]
host = "localhost"
tls = true
`)
	flat := filepath.Join(dir, "app.properties")
	if _, err := run(t, "flatten", "-o", flat, src); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(flat)
	want := "db.host=localhost\ndb.tls=true\nname=svc\nports.0=80\nports.1=443\n"
	if string(data) != want {
		t.Errorf("flatten = %q, want %q", data, want)
	}

	back := filepath.Join(dir, "back.toml")
	if _, err := run(t, "expand", "--infer", "-o", back, flat); err != nil {
		t.Fatal(err)
	}
	text, _ := os.ReadFile(back)
	for _, line := range []string{`name = "svc"`, `ports = [80, 443]`, `[db]`, `host = "localhost"`, `tls = true`} {
		if !strings.Contains(string(text), line) {
			t.Errorf("expand output misses %q:\n%s", line, text)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"tool": "props"`) {
		t.Errorf("version = %s", out)
	}
}

func TestRenderPretty(t *testing.T) {
	m := flatmap.Of("a", "1", "long.key", "line\nbreak", "日本", "", "u", strings.Repeat("x", 40))
	var buf bytes.Buffer
	renderPretty(&buf, m, 30)
	want := "a        = 1\n" +
		"long.key = line\\nbreak\n" +
		"日本     = (empty)\n" +
		"u        = xxxxxxxxxxxxxxxx...\n"
	if buf.String() != want {
		t.Errorf("pretty =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderJSON(&buf, flatmap.Of("z", "\"q\"", "a", "é")); err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"z\": \"\\\"q\\\"\",\n  \"a\": \"é\"\n}\n"; buf.String() != want {
		t.Errorf("json = %q, want %q", buf.String(), want)
	}
	buf.Reset()
	if err := renderJSON(&buf, flatmap.New(0)); err != nil || buf.String() != "{}\n" {
		t.Errorf("empty json = %q, %v", buf.String(), err)
	}
}

func TestSubtree(t *testing.T) {
	m := flatmap.Of("db", "x", "db.host", "h", "dbx", "no", "app.db", "no")
	if got := subtree(m, "db").Keys(); !reflect.DeepEqual(got, []string{"db", "db.host"}) {
		t.Errorf("subtree = %v", got)
	}
}

func TestAsTable(t *testing.T) {
	if _, err := asTable([]any{"a"}); !errors.Is(err, errNotTable) {
		t.Errorf("array root error = %v", err)
	}
	if _, err := asTable("v"); !errors.Is(err, errNotTable) {
		t.Errorf("scalar root error = %v", err)
	}
	if got, err := asTable(nil); err != nil || len(got) != 0 {
		t.Errorf("nil root = %v, %v", got, err)
	}
}

func TestInferScalars(t *testing.T) {
	in := map[string]any{
		"b": "true", "B": "TRUE", "i": "42", "z": "007", "f": "1.5", "s": "x",
		"l": []any{"1", map[string]any{"n": "-3"}},
	}
	want := map[string]any{
		"b": true, "B": "TRUE", "i": int64(42), "z": "007", "f": 1.5, "s": "x",
		"l": []any{int64(1), map[string]any{"n": int64(-3)}},
	}
	if got := inferScalars(in); !reflect.DeepEqual(got, want) {
		t.Errorf("inferScalars = %#v", got)
	}
}

func TestDescribeError(t *testing.T) {
	_, err := proptext.ReadString("a=1\nb=\\u00")
	got := describeError("x.properties", err)
	if !strings.HasPrefix(got, "x.properties:2: invalid unicode escape") {
		t.Errorf("describeError = %q", got)
	}
}
