package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nanalan/nom/cache"
	"github.com/nanalan/nom/compiler"
	"github.com/nanalan/nom/compiler/hash"
	"github.com/nanalan/nom/manifest"
)

var noCache bool

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Parse every source file and report errors",
	Long: `Parse nom source files in parallel and report every diagnostic.

Paths may be files or directories. With no paths, the project's nom.toml
decides which directories are scanned; without a nom.toml the current
directory is used. Unchanged files are served from the parse cache.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not read or write the parse cache")
	rootCmd.AddCommand(checkCmd)
}

// fileResult is the outcome of checking one file.
type fileResult struct {
	Path   string
	Source string
	Hash   string
	Err    error
}

func runCheck(cmd *cobra.Command, args []string) error {
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return err
	}
	if m == nil {
		if m, err = manifest.Default("."); err != nil {
			return err
		}
	}

	files, err := collectFiles(m, args)
	if err != nil {
		return err
	}

	var c *cache.Cache
	if !noCache && m.CacheEnabled() {
		c, err = cache.Open(m.CachePath())
		if err != nil {
			log.Warningf("parse cache disabled: %s", err)
			c = nil
		} else {
			defer c.Close()
		}
	}

	results, err := checkFiles(cmd.Context(), files, c)
	if err != nil {
		return err
	}
	if c != nil {
		hits, misses := c.Stats()
		log.Infof("parse cache: %d hits, %d misses", hits, misses)
	}

	r := newReporter(cmd.OutOrStdout())
	failed := 0
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		failed++
		r.file(res.Path)
		r.diagnostic(res.Source, res.Err)
	}
	r.summary(len(results), failed)

	if failed > 0 {
		return errReported
	}
	return nil
}

// collectFiles expands args into source files. Directories are scanned
// with the manifest's extensions; with no args the manifest's source
// directories are used.
func collectFiles(m *manifest.Manifest, args []string) ([]string, error) {
	if len(args) == 0 {
		return m.SourceFiles()
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		sub, err := manifest.Default(arg)
		if err != nil {
			return nil, err
		}
		sub.Source.Extensions = m.Source.Extensions
		found, err := sub.SourceFiles()
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// checkFiles parses files in parallel. Parse and read failures are
// reported per file; the returned error is only set when ctx is canceled.
// Results are in the order of files.
func checkFiles(ctx context.Context, files []string, c *cache.Cache) ([]fileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(ctx, path, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(ctx context.Context, path string, c *cache.Cache) fileResult {
	res := fileResult{Path: path}

	src, err := readSource(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Source = src

	if c != nil {
		entry, err := c.Parse(ctx, src)
		if err != nil {
			res.Err = err
			return res
		}
		res.Hash = entry.Hash
		return res
	}

	stmts, err := compiler.ParseStatements(src)
	if err != nil {
		res.Err = err
		return res
	}
	res.Hash = hash.Hex(hash.HashProgram(stmts))
	return res
}
