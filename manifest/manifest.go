// Package manifest handles nom.toml project configuration.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "nom.toml"

// Manifest represents a nom.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Source  Source      `toml:"source"`
	Cache   CacheConfig `toml:"cache"`
	LSP     LSPConfig   `toml:"lsp"`

	// Dir is the directory containing the nom.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs       []string `toml:"dirs"`
	Entry      string   `toml:"entry"`
	Extensions []string `toml:"extensions"`
}

// CacheConfig configures the on-disk parse cache.
type CacheConfig struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
}

// LSPConfig configures the language server.
type LSPConfig struct {
	Log string `toml:"log"`
}

// Default returns the manifest used when a project has no nom.toml.
func Default(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m := &Manifest{Dir: abs}
	m.applyDefaults()
	return m, nil
}

// Load parses a nom.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"."}
	}
	if len(m.Source.Extensions) == 0 {
		m.Source.Extensions = []string{".nom"}
	}
	for i, ext := range m.Source.Extensions {
		if !strings.HasPrefix(ext, ".") {
			m.Source.Extensions[i] = "." + ext
		}
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".nom", "cache.db")
	}
}

// FindAndLoad walks up from startDir to find a nom.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// EntryPath returns the absolute path of the entry file, or "" if none is
// configured.
func (m *Manifest) EntryPath() string {
	if m.Source.Entry == "" {
		return ""
	}
	return filepath.Join(m.Dir, m.Source.Entry)
}

// CacheEnabled reports whether the parse cache is on. It defaults to true.
func (m *Manifest) CacheEnabled() bool {
	return m.Cache.Enabled == nil || *m.Cache.Enabled
}

// CachePath returns the absolute path of the parse cache database.
func (m *Manifest) CachePath() string {
	if filepath.IsAbs(m.Cache.Path) {
		return m.Cache.Path
	}
	return filepath.Join(m.Dir, m.Cache.Path)
}

// IsSource reports whether path has one of the configured extensions.
func (m *Manifest) IsSource(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range m.Source.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SourceFiles returns every source file under the configured directories,
// sorted and without duplicates. Hidden directories are skipped.
func (m *Manifest) SourceFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range m.SourceDirPaths() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if m.IsSource(path) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
