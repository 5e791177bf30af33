package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"swell/internal/prof"
	"swell/internal/trace"
)

var traceCleanup func(failed bool)

// setupTracing starts the profiles and the tracer named by the persistent
// flags and attaches the tracer to the command context.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	pf := cmd.Root().PersistentFlags()
	output, _ := pf.GetString("trace")
	levelStr, _ := pf.GetString("trace-level")
	formatStr, _ := pf.GetString("trace-format")
	ring, _ := pf.GetInt("trace-ring")

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	cpu, _ := pf.GetString("cpuprofile")
	mem, _ := pf.GetString("memprofile")
	rt, _ := pf.GetString("runtime-trace")
	session, err := prof.Start(prof.Options{CPU: cpu, Mem: mem, Trace: rt})
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(trace.Config{Level: level, Format: format, Output: output, RingSize: ring})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create tracer: %w", err), session.Stop())
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	return func(failed bool) {
		if failed {
			for _, r := range trace.Rings(tracer) {
				fmt.Fprintln(os.Stderr, "--- last trace events ---")
				if err := r.Dump(os.Stderr, format); err != nil {
					fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
				}
			}
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		}
	}, nil
}

func runTraceCleanup(failed bool) {
	if traceCleanup == nil {
		return
	}
	cleanup := traceCleanup
	traceCleanup = nil
	cleanup(failed)
}
