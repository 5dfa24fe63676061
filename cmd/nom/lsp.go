package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nanalan/nom/manifest"
	"github.com/nanalan/nom/server"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server on stdio",
	Long: `Run the nom language server over stdin/stdout.

Logs go to the file named by --log, or by [lsp] log in nom.toml, and to
stderr otherwise. Stdout carries the protocol.`,
	Args: cobra.NoArgs,
	// Logging is configured in RunE once the log path is known.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	RunE:             runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func runLSP(cmd *cobra.Command, args []string) error {
	path := logFile
	if path == "" {
		if m, err := manifest.FindAndLoad("."); err == nil && m != nil && m.LSP.Log != "" {
			path = m.LSP.Log
			if !filepath.IsAbs(path) {
				path = filepath.Join(m.Dir, path)
			}
		}
	}
	configureLogging(path)

	return server.NewLSP(version).Run()
}
