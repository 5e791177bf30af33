package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"swell/internal/driver"
	"swell/internal/format"
	"swell/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.sw",
	Short: "Parse a source file and print its syntax tree",
	Long: `Parse builds the concrete syntax tree of one file without following its
modules. --emit=tree prints the structural dump, --emit=source prints the
canonical formatting and --check verifies that formatting round-trips.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("emit", "tree", "what to print (tree|source|none)")
	parseCmd.Flags().Bool("check", false, "fail unless the canonical formatting parses to the same tree")
	parseCmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	parseCmd.Flags().StringArray("cfg", nil, "set a cfg pair, e.g. --cfg target=test (repeatable)")
}

func runParse(cmd *cobra.Command, args []string) error {
	emit, _ := cmd.Flags().GetString("emit")
	check, _ := cmd.Flags().GetBool("check")
	pairs, _ := cmd.Flags().GetStringArray("cfg")
	cfg, err := parseCfg(pairs)
	if err != nil {
		return err
	}
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	res := driver.Parse(cmd.Context(), fs, id, driver.Options{MaxDiagnostics: maxDiagnostics, Cfg: cfg})
	if err := printDiagnostics(cmd, res.Bag, fs, filepath.Dir(args[0])); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch emit {
	case "tree":
		fmt.Fprint(out, format.Dump(res.Builder, res.AST))
	case "source":
		text, err := format.FormatFile(res.Builder, res.AST, format.Options{})
		if err != nil {
			return err
		}
		if _, err := out.Write(text); err != nil {
			return err
		}
	case "none":
	default:
		return fmt.Errorf("unknown --emit %q (want tree, source or none)", emit)
	}

	if res.Bag.HasErrors() {
		return errFailed
	}
	if check {
		if ok, msg := format.CheckRoundTrip(args[0], fs.Get(id).Content, cfg); !ok {
			fmt.Fprintln(os.Stderr, msg)
			return errFailed
		}
	}
	return nil
}
