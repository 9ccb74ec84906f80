// Package trace records what the props tool and codec are doing.
//
// Tracing is the logging layer of the module: commands, files, codec calls
// and their read/decode/encode/write phases are reported as spans, and
// single entries as point events.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	props check --trace=- --trace-level=detail conf/*.properties
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer dumped when a command fails
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only the failure dump
//   - LevelPhase: command and per-file boundaries
//   - LevelDetail: codec calls and their phases
//   - LevelDebug: everything including single entries
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeCall, "decode", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
