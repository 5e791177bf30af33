package main

import (
	"github.com/spf13/cobra"

	"swell/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path]",
	Short: "Run every analysis on a package and report diagnostics",
	Long: `Check loads the package at path (a directory with swell.toml above it or a
single .sw file), resolves names, type checks and verifies storage purity.
The exit status is 0 only when no error was reported; warnings never fail.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addCompileFlags(checkCmd)
	checkCmd.Flags().String("stage", "check", "last stage to run (parse|resolve|check|lower)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	stageName, _ := cmd.Flags().GetString("stage")
	stage, err := driver.ParseStage(stageName)
	if err != nil {
		return err
	}
	res, proj, opts, err := compileTarget(cmd, args, stage, nil)
	if proj == nil {
		return err
	}
	return finishCompile(cmd, res, proj, opts, err)
}

// compileTarget opens the project named by args and runs the driver up to
// stage. cache may be nil.
func compileTarget(cmd *cobra.Command, args []string, stage driver.Stage, cache *driver.DiskCache) (*driver.Result, *driver.Project, driver.Options, error) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	proj, err := driver.OpenProject(target)
	if err != nil {
		return nil, nil, driver.Options{}, err
	}
	opts, err := compileOptions(cmd)
	if err != nil {
		return nil, nil, driver.Options{}, err
	}
	opts = proj.Apply(opts)
	opts.Stage = stage
	opts.Cache = cache
	res, err := driver.Compile(cmd.Context(), proj.Root, proj.Provider, opts)
	return res, proj, opts, err
}
