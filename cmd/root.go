// Package cmd implements the edb command line: it decodes one or more input
// files (or stdin) and extracts them into a Datalog fact database.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/edb/internal/backend"
	"github.com/agentic-research/edb/internal/extract"
	"github.com/agentic-research/edb/internal/format"
	"github.com/spf13/cobra"
)

var (
	formatName  string
	outputPath  string
	listFormats bool
	genericKeys bool
)

func init() {
	rootCmd.Flags().StringVarP(&formatName, "format", "f", "", "Format of the input; guessed from the file extension if absent")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "File name of the output SQLite database; facts are printed if absent")
	rootCmd.Flags().BoolVarP(&listFormats, "list-formats", "l", false, "List the supported input formats")
	rootCmd.Flags().BoolVar(&genericKeys, "generic-keys", false, "Store map keys as elements instead of interned strings (required for non-string keys)")
}

var rootCmd = &cobra.Command{
	Use:   "edb [file ...]",
	Short: "Convert structured data into a database of Datalog facts",
	Long: "edb walks JSON, TOML, YAML, or HCL documents and flattens them into\n" +
		"relational facts, either printed as tables or written as a SQLite\n" +
		"database in the input format expected by the Souffle Datalog engine.\n" +
		"When no file is given, input is read from standard input.",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "edb: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if listFormats {
		printFormats(cmd.OutOrStdout())
		return nil
	}

	keys := backend.StringKeys
	if genericKeys {
		keys = backend.GenericKeys
	}
	be := backend.NewSQLite(keys)
	ex := extract.New(be)

	if len(args) == 0 {
		f, ok := format.ByName(formatName)
		if !ok {
			printFormats(cmd.OutOrStdout())
			return fmt.Errorf("reading from stdin requires --format")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		if err := extractOne(ex, f, 0, data); err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
	}

	for i, path := range args {
		f, err := formatFor(path)
		if err != nil {
			printFormats(cmd.OutOrStdout())
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if len(args) > 1 {
			log.Printf("source %d: %s", i, path)
		}
		if err := extractOne(ex, f, i, data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if outputPath == "" {
		return be.Dump(cmd.OutOrStdout())
	}
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("remove existing output: %w", err)
		}
	}
	if err := be.Flush(outputPath); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

func extractOne(ex *extract.Extractor, f format.Format, source int, data []byte) error {
	v, err := f.Decode(data)
	if err != nil {
		return err
	}
	if _, err := ex.ExtractRoot(source, v); err != nil {
		return err
	}
	return nil
}

// formatFor resolves the input format for a file: an explicit --format wins,
// otherwise the file extension decides.
func formatFor(path string) (format.Format, error) {
	if formatName != "" {
		f, ok := format.ByName(formatName)
		if !ok {
			return nil, fmt.Errorf("unknown format %q", formatName)
		}
		return f, nil
	}
	ext := filepath.Ext(path)
	f, ok := format.ByExtension(ext)
	if !ok {
		return nil, fmt.Errorf("cannot guess format of %s; use --format", path)
	}
	return f, nil
}

func printFormats(w io.Writer) {
	fmt.Fprintln(w, "Supported input formats:")
	for _, f := range format.All() {
		exts := make([]string, len(f.Extensions()))
		for i, e := range f.Extensions() {
			exts[i] = "." + e
		}
		fmt.Fprintf(w, "- %s (extensions: %s)\n", f.Name(), strings.Join(exts, ", "))
	}
}
