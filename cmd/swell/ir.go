package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"swell/internal/driver"
	"swell/internal/ir"
)

var irCmd = &cobra.Command{
	Use:   "ir [flags] [path]",
	Short: "Lower a package to IR",
	Long: `IR runs the whole pipeline and prints the lowered module. --emit=text gives
the readable listing, --emit=msgpack the encoding handed to the backend.
With --cache, lowered modules of unchanged sources are reused.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIR,
}

func init() {
	addCompileFlags(irCmd)
	irCmd.Flags().String("emit", "text", "output encoding (text|msgpack)")
	irCmd.Flags().StringP("output", "o", "-", "output file")
	irCmd.Flags().Bool("cache", false, "reuse lowered IR from the user cache directory")
}

func runIR(cmd *cobra.Command, args []string) error {
	emit, _ := cmd.Flags().GetString("emit")
	if emit != "text" && emit != "msgpack" {
		return fmt.Errorf("unknown --emit %q (want text or msgpack)", emit)
	}
	output, _ := cmd.Flags().GetString("output")
	useCache, _ := cmd.Flags().GetBool("cache")

	var cache *driver.DiskCache
	if useCache {
		c, err := driver.OpenDiskCache("swell")
		if err != nil {
			return err
		}
		cache = c
	}
	res, proj, opts, err := compileTarget(cmd, args, driver.StageLower, cache)
	if proj == nil {
		return err
	}
	if err := finishCompile(cmd, res, proj, opts, err); err != nil {
		return err
	}
	return writeIR(cmd, res.Module, emit, output)
}

func writeIR(cmd *cobra.Command, m *ir.Module, emit, output string) (err error) {
	var w io.Writer = cmd.OutOrStdout()
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	bw := bufio.NewWriter(w)
	if emit == "msgpack" {
		data, err := ir.Marshal(m)
		if err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
	} else if err := ir.Print(bw, m); err != nil {
		return err
	}
	return bw.Flush()
}
