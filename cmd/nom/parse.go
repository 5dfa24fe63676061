package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanalan/nom/compiler"
	"github.com/nanalan/nom/compiler/wire"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a file and print its syntax tree",
	Long: `Parse a nom source file and print the resulting tree.

Formats:
  json   indented JSON in the nested-array wire shape (default)
  cbor   canonical CBOR bytes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parseFile(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], parseFormat)
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "Output format: json or cbor")
	rootCmd.AddCommand(parseCmd)
}

// readSource reads a source file and normalizes its line endings.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &readError{Path: path, Err: err}
	}
	return compiler.NormalizeNewlines(string(data)), nil
}

// parseFile parses path and writes its tree in format to out. An empty
// format only reports errors. Diagnostics go to errOut.
func parseFile(out, errOut io.Writer, path, format string) error {
	switch format {
	case "", "json", "cbor":
	default:
		return fmt.Errorf("unknown format %q (want json or cbor)", format)
	}

	src, err := readSource(path)
	if err != nil {
		newReporter(errOut).diagnostic("", err)
		return errReported
	}

	stmts, err := compiler.ParseStatements(src)
	if err != nil {
		log.Debugf("%s: %s", path, err)
		newReporter(errOut).diagnostic(src, err)
		return errReported
	}

	var data []byte
	switch format {
	case "":
		return nil
	case "json":
		data, err = wire.MarshalIndentJSON(stmts, "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "cbor":
		data, err = wire.MarshalCBOR(stmts)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	_, err = out.Write(data)
	return err
}
