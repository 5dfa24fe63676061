// nom CLI - parse, check and hash nom programs, and serve them to editors
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.3.0"

// errReported marks a failure whose details were already printed.
var errReported = errors.New("reported")

var (
	verbose  int
	logFile  string
	showTree bool
)

var log = commonlog.GetLogger("nom.cli")

var rootCmd = &cobra.Command{
	Use:   "nom [file.nom]",
	Short: "The nom language toolkit",
	Long: `nom parses nom source files.

Run with a file to parse it; add -t to print its syntax tree.

Examples:
  nom main.nom            # parse main.nom, report errors
  nom -t main.nom         # print the syntax tree as JSON
  nom check ./src         # parse every .nom file under src/
  nom hash main.nom       # print content hashes
  nom lsp --log nom.log   # serve editors over stdio`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(logFile)
	},
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "V", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "Write logs to this file instead of stderr")
	rootCmd.Flags().BoolVarP(&showTree, "tree", "t", false, "Print the syntax tree")
	rootCmd.Flags().BoolP("version", "v", false, "Print the version banner")

	rootCmd.AddCommand(helloCmd)
}

var helloCmd = &cobra.Command{
	Use:    "hello",
	Short:  "Print the bare version string",
	Hidden: true,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version)
	},
}

func configureLogging(path string) {
	if path == "" {
		commonlog.Configure(verbose, nil)
		return
	}
	commonlog.Configure(verbose, &path)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Fprint(cmd.OutOrStdout(), banner(version))
		return nil
	}
	if len(args) == 0 {
		return cmd.Help()
	}

	format := ""
	if showTree {
		format = "json"
	}
	return parseFile(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], format)
}

func banner(v string) string {
	return `   _ __   ___  _ __ ___
  | '_ \ / _ \| '_ ` + "`" + ` _ \
  | | | | (_) | | | | | |
  |_| |_|\___/|_| |_| |_|

         nom v` + v + "\n"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
