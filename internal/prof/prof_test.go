package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStartStopWritesFiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPU:          filepath.Join(dir, "cpu.pprof"),
		Heap:         filepath.Join(dir, "heap.pprof"),
		RuntimeTrace: filepath.Join(dir, "run.trace"),
	}
	if !opts.Enabled() {
		t.Fatal("Enabled() = false")
	}
	p, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	for _, path := range []string{opts.CPU, opts.Heap, opts.RuntimeTrace} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s: %v", filepath.Base(path), err)
		}
	}
}

func TestStartBadPath(t *testing.T) {
	dir := t.TempDir()
	_, err := Start(Options{
		CPU:          filepath.Join(dir, "cpu.pprof"),
		RuntimeTrace: filepath.Join(dir, "missing", "run.trace"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	// The CPU profiler must have been released.
	p, err := Start(Options{CPU: filepath.Join(dir, "again.pprof")})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	if (Options{}).Enabled() {
		t.Fatal("empty options enabled")
	}
}
