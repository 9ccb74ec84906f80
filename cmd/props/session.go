package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bishiboosh/properties-serializer/internal/cache"
	"github.com/bishiboosh/properties-serializer/internal/config"
	"github.com/bishiboosh/properties-serializer/internal/prof"
	"github.com/bishiboosh/properties-serializer/internal/props"
	"github.com/bishiboosh/properties-serializer/internal/trace"
)

// session is the state shared by every command of one invocation.
type session struct {
	cfg     config.Config
	cfgPath string
	tracer  trace.Tracer
	cleanup func()
	span    *trace.Span
	cache   *cache.Cache
	format  *props.Format
	prof    *prof.Profiler
	color   bool
	errOut  *os.File
}

type sessionKey struct{}

func sessionOf(cmd *cobra.Command) *session {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

// openSession merges props.toml with the command line, then sets up color,
// tracing and the cache. Flags given explicitly win over the file.
func openSession(cmd *cobra.Command, _ []string) error {
	s := &session{errOut: os.Stderr, tracer: trace.Nop, cleanup: func() {}}

	cfgPath, err := flagString(cmd, "config")
	if err != nil {
		return err
	}
	var file *config.File
	if cfgPath != "" {
		file, err = config.Load(cfgPath)
	} else {
		file, err = config.Discover(".")
	}
	if err != nil {
		return err
	}
	s.cfg, s.cfgPath = file.Config, file.Path
	if err := applyFlags(cmd, &s.cfg); err != nil {
		return err
	}

	switch strings.ToLower(s.cfg.Output.Color) {
	case "on":
		s.color = true
	case "off":
		s.color = false
	case "auto":
		s.color = isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid color mode %q (expected: auto|on|off)", s.cfg.Output.Color)
	}
	color.NoColor = !s.color

	tracer, cleanup, err := setupTracing(cmd, s.cfg.Trace)
	if err != nil {
		return err
	}
	s.tracer, s.cleanup = tracer, cleanup

	if s.cfg.Cache.Enabled {
		if s.cfg.Cache.Dir != "" {
			s.cache, err = cache.OpenAt(s.cfg.Cache.Dir)
		} else {
			s.cache, err = cache.Open("props")
		}
		if err != nil {
			s.cleanup()
			return fmt.Errorf("failed to open cache: %w", err)
		}
	}

	s.format = props.New(props.WithTracer(tracer))

	profOpts, err := profileOptions(cmd)
	if err == nil && profOpts.Enabled() {
		s.prof, err = prof.Start(profOpts)
	}
	if err != nil {
		s.cleanup()
		return err
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	ctx, s.span = trace.Start(ctx, trace.ScopeCommand, cmd.CommandPath())
	if s.cfgPath != "" {
		s.span.WithExtra("config", s.cfgPath)
	}
	ctx = context.WithValue(ctx, sessionKey{}, s)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	return nil
}

// applyFlags copies explicitly set persistent flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("color") {
		if cfg.Output.Color, err = flagString(cmd, "color"); err != nil {
			return err
		}
	}
	if flags.Changed("cache") {
		if cfg.Cache.Enabled, err = flagBool(cmd, "cache"); err != nil {
			return err
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flagString(cmd, "trace"); err != nil {
			return err
		}
		// An explicit output without a level means "show me the phases".
		if !flags.Changed("trace-level") && strings.EqualFold(cfg.Trace.Level, "off") {
			cfg.Trace.Level = "phase"
		}
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flagString(cmd, "trace-level"); err != nil {
			return err
		}
	}
	if flags.Changed("trace-mode") {
		if cfg.Trace.Mode, err = flagString(cmd, "trace-mode"); err != nil {
			return err
		}
	}
	return nil
}

func profileOptions(cmd *cobra.Command) (prof.Options, error) {
	var opts prof.Options
	var err error
	if opts.CPU, err = flagString(cmd, "cpu-profile"); err != nil {
		return opts, err
	}
	if opts.Heap, err = flagString(cmd, "mem-profile"); err != nil {
		return opts, err
	}
	if opts.RuntimeTrace, err = flagString(cmd, "runtime-trace"); err != nil {
		return opts, err
	}
	return opts, nil
}

// close ends the command span. On failure the ring buffer, if any, is dumped
// to stderr before the tracer is closed.
func (s *session) close(cmdErr error) {
	s.span.EndErr(cmdErr)
	if cmdErr != nil {
		if ring, ok := trace.RingOf(s.tracer); ok {
			fmt.Fprintln(s.errOut, "trace: last events before failure:")
			if err := ring.Dump(s.errOut, trace.FormatText); err != nil {
				fmt.Fprintf(s.errOut, "trace: dump error: %v\n", err)
			}
		}
	}
	if err := s.prof.Stop(); err != nil {
		fmt.Fprintf(s.errOut, "profiling: %v\n", err)
	}
	s.cleanup()
}
