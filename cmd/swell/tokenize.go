package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"swell/internal/diagfmt"
	"swell/internal/driver"
	"swell/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.sw",
	Short: "Print the token stream of a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json); diagnostics use pretty")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	res := driver.Tokenize(cmd.Context(), fs, id, maxDiagnostics)
	if res.Bag.Len() > 0 {
		err := diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, fs, diagfmt.PrettyOpts{
			Color:    useColor(cmd, os.Stderr),
			Context:  1,
			PathMode: diagfmt.PathModeRelative,
			BaseDir:  filepath.Dir(args[0]),
		})
		if err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	if format == "json" {
		err = diagfmt.FormatTokensJSON(out, res.Tokens)
	} else {
		err = diagfmt.FormatTokensPretty(out, res.Tokens, fs)
	}
	if err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return errFailed
	}
	return nil
}
