package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bishiboosh/properties-serializer/internal/config"
	"github.com/bishiboosh/properties-serializer/internal/trace"
)

// setupTracing builds the tracer described by the merged trace settings.
// It returns a cleanup function that flushes and closes it.
func setupTracing(cmd *cobra.Command, tc config.TraceConfig) (trace.Tracer, func(), error) {
	ringSize, err := flagInt(cmd, "trace-ring-size")
	if err != nil {
		return nil, nil, err
	}

	level, err := trace.ParseLevel(tc.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		return trace.Nop, func() {}, nil
	}

	mode, err := trace.ParseMode(tc.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tc.Output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}
