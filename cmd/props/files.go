package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/proptext"
	"github.com/bishiboosh/properties-serializer/internal/trace"
)

// loadFile reads and parses one properties file, through the cache when it
// is enabled. "-" reads stdin.
func (s *session) loadFile(ctx context.Context, path string) (data []byte, m *flatmap.Map, err error) {
	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+path)
	defer func() { span.EndErr(err) }()

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, nil, err
	}
	span.WithExtra("bytes", strconv.Itoa(len(data)))

	if s.cache != nil {
		var hit bool
		m, hit, err = s.cache.Parse(data)
		span.WithExtra("cache", strconv.FormatBool(hit))
		if err != nil && m == nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		// A failed cache write still leaves a usable parse.
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache", err.Error(), span.ID())
		}
		return data, m, nil
	}
	m, err = proptext.ReadBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, m, nil
}

// loadOrEmpty is loadFile that treats a missing file as empty when create
// is set.
func (s *session) loadOrEmpty(cmd *cobra.Command, path string, create bool) (*flatmap.Map, error) {
	if create && path != "-" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return flatmap.New(0), nil
		}
	}
	_, m, err := s.loadFile(cmd.Context(), path)
	return m, err
}

// render returns the normalized text of m.
func render(m *flatmap.Map) []byte {
	var buf bytes.Buffer
	// bytes.Buffer never returns a write error.
	_ = proptext.Write(&buf, m)
	return buf.Bytes()
}

// writeFileAtomic replaces path with data through a temp file in the same
// directory, keeping the original permissions.
func writeFileAtomic(path string, data []byte) (err error) {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".props-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(mode); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// openOutput returns the writer named by an --output flag value.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
