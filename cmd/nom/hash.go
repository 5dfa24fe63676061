package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nanalan/nom/compiler"
	"github.com/nanalan/nom/compiler/hash"
)

var hashCmd = &cobra.Command{
	Use:   "hash FILE",
	Short: "Print content hashes for a file and its methods",
	Long: `Print the content hash of a whole file followed by the hash of each
method it defines. Hashes ignore layout and parameter names, so two
methods that differ only in those hash the same.`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := readSource(path)
	if err != nil {
		newReporter(cmd.ErrOrStderr()).diagnostic("", err)
		return errReported
	}

	prog, err := compiler.Parse(src)
	if err != nil {
		newReporter(cmd.ErrOrStderr()).diagnostic(src, err)
		return errReported
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", hash.Hex(hash.HashProgram(prog.Statements)), path)
	for _, stmt := range prog.Statements {
		compiler.Walk(stmt, func(n compiler.Node) bool {
			if def, ok := n.(*compiler.MethodDef); ok {
				fmt.Fprintf(out, "%s  %s/%d\n", hash.Hex(hash.HashMethod(def)), def.Name.Name, len(def.Params))
			}
			return true
		})
	}
	return nil
}
