// Package project locates and parses the silica.toml manifest that describes
// a compilation unit: package name, deployment target and source files.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"silica/internal/target"
)

const ManifestName = "silica.toml"

// Manifest is a parsed silica.toml plus where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML structure.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type BuildConfig struct {
	// Target is evm, wasm or svm.
	Target string `toml:"target"`
	// Sources are files or directories relative to the manifest, in
	// compilation order. Empty means every .sil file under the root.
	Sources []string `toml:"sources"`
	// Out is the artifact directory, relative to the manifest.
	Out string `toml:"out"`
}

// Find walks from startDir upward looking for silica.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses the manifest governing startDir. The bool reports
// whether a manifest exists at all.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadFile parses one manifest file and validates the required keys.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(path, meta, &cfg); err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

func validate(path string, meta toml.MetaData, cfg *Config) error {
	if !meta.IsDefined("package") {
		return fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return fmt.Errorf("%s: missing [package].name", path)
	}
	if meta.IsDefined("build", "target") {
		if _, ok := target.Parse(cfg.Build.Target); !ok {
			return fmt.Errorf("%s: unknown [build].target %q (want evm, wasm or svm)", path, cfg.Build.Target)
		}
	}
	return nil
}

// Target returns the manifest's deployment target, defaulting to EVM.
func (m *Manifest) Target() target.Target {
	if m.Config.Build.Target == "" {
		return target.EVM
	}
	tgt, _ := target.Parse(m.Config.Build.Target)
	return tgt
}

// OutDir returns the artifact directory, defaulting to <root>/out.
func (m *Manifest) OutDir() string {
	out := m.Config.Build.Out
	if out == "" {
		out = "out"
	}
	return filepath.Join(m.Root, filepath.FromSlash(out))
}

// SourceFiles expands [build].sources into concrete .sil paths. Listed files
// keep their order; directories contribute their .sil files sorted by name.
// With no sources configured the whole root is scanned.
func (m *Manifest) SourceFiles() ([]string, error) {
	entries := m.Config.Build.Sources
	if len(entries) == 0 {
		entries = []string{"."}
	}
	var out []string
	for _, entry := range entries {
		path := filepath.Join(m.Root, filepath.FromSlash(entry))
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%s: [build].sources entry %q: %w", m.Path, entry, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) != ".sil" {
				return nil, fmt.Errorf("%s: [build].sources entry %q is not a .sil file", m.Path, entry)
			}
			out = append(out, path)
			continue
		}
		found, err := silFilesUnder(path)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no .sil source files found", m.Path)
	}
	return dedupe(out), nil
}

func silFilesUnder(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Build output never feeds back into the build.
			if path != dir && (d.Name() == "out" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".sil" {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
