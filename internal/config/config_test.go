package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[check]
jobs = 3

[cache]
enabled = true
dir = ".cache/props"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	f, err := Discover(nested)
	if err != nil {
		t.Fatal(err)
	}
	if f.Root != root {
		t.Errorf("Root = %q, want %q", f.Root, root)
	}
	if f.Config.Check.Jobs != 3 || !f.Config.Cache.Enabled {
		t.Errorf("Config = %+v", f.Config)
	}
	if want := filepath.Join(root, ".cache", "props"); f.Config.Cache.Dir != want {
		t.Errorf("Cache.Dir = %q, want %q", f.Config.Cache.Dir, want)
	}
	if f.Config.Output.Color != "auto" || f.Config.Trace.Mode != "stream" {
		t.Errorf("defaults lost: %+v", f.Config)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	f, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// A props.toml above the temp dir would be picked up; only check the
	// path when none was found.
	if f.Path == "" && f.Config != Default() {
		t.Errorf("Config = %+v, want defaults", f.Config)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[output\n", "failed to parse TOML"},
		{"unknown key", "[output]\nstyle = 1\n", "unknown key output.style"},
		{"color", "[output]\ncolor = \"always\"\n", "[output].color"},
		{"format", "[output]\nformat = \"yaml\"\n", "[output].format"},
		{"jobs", "[check]\njobs = -1\n", "[check].jobs"},
		{"level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"mode", "[trace]\nmode = \"disk\"\n", "[trace].mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[trace]\nlevel = \"detail\"\noutput = \"trace.ndjson\"\nmode = \"both\"\n")
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := TraceConfig{Level: "detail", Output: "trace.ndjson", Mode: "both"}
	if f.Config.Trace != want {
		t.Errorf("Trace = %+v", f.Config.Trace)
	}
}
