package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"swell/internal/diag"
	"swell/internal/diagfmt"
	"swell/internal/driver"
	"swell/internal/observ"
	"swell/internal/source"
)

// printDiagnostics renders bag to stderr in the --format of cmd.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, baseDir string) error {
	if bag == nil || bag.Len() == 0 && bag.Dropped() == 0 {
		return nil
	}
	name, _ := cmd.Flags().GetString("format")
	format, err := diagfmt.ParseFormat(name)
	if err != nil {
		return err
	}
	w := cmd.ErrOrStderr()
	switch format {
	case diagfmt.FormatJSON:
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			PathMode:         diagfmt.PathModeRelative,
			BaseDir:          baseDir,
		})
	case diagfmt.FormatShort:
		return diagfmt.Short(w, bag, fs, diagfmt.PrettyOpts{
			Color:    useColor(cmd, os.Stderr),
			PathMode: diagfmt.PathModeRelative,
			BaseDir:  baseDir,
		})
	}
	return diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     useColor(cmd, os.Stderr),
		Context:   1,
		PathMode:  diagfmt.PathModeRelative,
		BaseDir:   baseDir,
		ShowNotes: true,
	})
}

// compileOptions collects the flags shared by check and ir.
func compileOptions(cmd *cobra.Command) (driver.Options, error) {
	pf := cmd.Root().PersistentFlags()
	jobs, _ := pf.GetInt("jobs")
	maxDiags, _ := pf.GetInt("max-diagnostics")
	pairs, _ := cmd.Flags().GetStringArray("cfg")
	cfg, err := parseCfg(pairs)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{Jobs: jobs, MaxDiagnostics: maxDiags, Cfg: cfg}
	if timings, _ := pf.GetBool("timings"); timings {
		opts.Timer = observ.NewTimer()
	}
	return opts, nil
}

// parseCfg turns repeated --cfg key=value flags into a map.
func parseCfg(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	cfg := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --cfg %q (want key=value)", p)
		}
		cfg[k] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	return cfg, nil
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	cmd.Flags().StringArray("cfg", nil, "set a cfg pair, e.g. --cfg target=test (repeatable)")
}

// finishCompile prints diagnostics and timings and maps diagnostics with
// errors to errFailed.
func finishCompile(cmd *cobra.Command, res *driver.Result, proj *driver.Project, opts driver.Options, compileErr error) error {
	if res != nil {
		if err := printDiagnostics(cmd, res.Bag, res.FileSet, proj.Dir); err != nil {
			return err
		}
	}
	if opts.Timer != nil {
		printTimings(cmd.ErrOrStderr(), opts.Timer.Report(), useColor(cmd, os.Stderr))
	}
	if compileErr != nil {
		if res != nil && res.Bag.HasErrors() {
			return errFailed
		}
		return compileErr
	}
	if res.Failed() {
		return errFailed
	}
	return nil
}
