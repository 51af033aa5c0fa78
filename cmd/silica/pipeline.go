package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"silica/internal/driver"
	"silica/internal/project"
	"silica/internal/target"
)

// compileUnit is one resolved invocation: where the sources came from and
// what they compiled to.
type compileUnit struct {
	Target   target.Target
	Inputs   []driver.Input
	Manifest *project.Manifest // nil when files were passed explicitly
	Result   *driver.Result
	Elapsed  time.Duration
}

// packageName is the artifact base name: the manifest package, or the first
// source file's stem.
func (u *compileUnit) packageName() string {
	if u.Manifest != nil {
		return u.Manifest.Config.Package.Name
	}
	base := filepath.Base(u.Inputs[0].Path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// compileFromArgs resolves sources and target from the command line. Explicit
// .sil file arguments win; otherwise the nearest silica.toml governs, with a
// directory argument moving the search root.
func compileFromArgs(cmd *cobra.Command, args []string) (*compileUnit, error) {
	flagTarget, err := cmd.Flags().GetString("target")
	if err != nil {
		return nil, err
	}

	unit := &compileUnit{}

	var paths []string
	if len(args) > 0 && filepath.Ext(args[0]) == ".sil" {
		for _, arg := range args {
			if filepath.Ext(arg) != ".sil" {
				return nil, fmt.Errorf("cannot mix .sil files with %q", arg)
			}
			paths = append(paths, arg)
		}
		unit.Target = target.EVM
	} else {
		startDir := "."
		if len(args) > 0 {
			startDir = args[0]
		}
		manifest, ok, err := project.Load(startDir)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no %s found; pass .sil files explicitly or run inside a project", project.ManifestName)
		}
		paths, err = manifest.SourceFiles()
		if err != nil {
			return nil, err
		}
		unit.Manifest = manifest
		unit.Target = manifest.Target()
	}

	if flagTarget != "" {
		tgt, ok := target.Parse(flagTarget)
		if !ok {
			return nil, fmt.Errorf("unknown target %q (want evm, wasm or svm)", flagTarget)
		}
		unit.Target = tgt
	}

	unit.Inputs, err = driver.ReadInputs(paths)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	unit.Result = driver.Compile(unit.Target, unit.Inputs...)
	unit.Elapsed = time.Since(started)
	return unit, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1e6)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	}
	return fmt.Sprintf("%dns", d.Nanoseconds())
}
