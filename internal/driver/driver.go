// Package driver runs the front-end pipeline: read sources, parse each file,
// merge the units and resolve the result. The CLI and the language server
// both sit on top of it.
package driver

import (
	"fmt"
	"os"

	"silica/internal/ast"
	"silica/internal/diag"
	"silica/internal/parser"
	"silica/internal/sema"
	"silica/internal/source"
	"silica/internal/target"
)

// Input is one source file by path and content.
type Input struct {
	Path string
	Text string
}

// Result carries everything downstream consumers need: positions for
// rendering, the diagnostic sink and the resolved namespace. Namespace is
// populated even with errors so tooling can still inspect what resolved.
type Result struct {
	Files     *source.FileSet
	Units     []*ast.SourceUnit // one per input, in order
	Bag       *diag.Bag
	Namespace *sema.Namespace
}

// Ok reports whether the pipeline produced no errors.
func (r *Result) Ok() bool {
	return !r.Bag.HasErrors()
}

// Compile parses and resolves a set of sources for one target. Files are
// parsed independently; declarations live in a single shared namespace.
func Compile(tgt target.Target, inputs ...Input) *Result {
	files := source.NewFileSet()
	bag := diag.NewBag()

	merged := &ast.SourceUnit{}
	units := make([]*ast.SourceUnit, 0, len(inputs))
	for _, in := range inputs {
		id := files.Add(in.Path, in.Text)
		unit := parser.ParseSource(id, in.Text, bag)
		units = append(units, unit)
		if unit != nil {
			merged.Items = append(merged.Items, unit.Items...)
		}
	}

	ns := sema.Analyze(merged, tgt, bag)
	return &Result{Files: files, Units: units, Bag: bag, Namespace: ns}
}

// ReadInputs loads source files from disk in the given order.
func ReadInputs(paths []string) ([]Input, error) {
	inputs := make([]Input, 0, len(paths))
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, Input{Path: path, Text: string(text)})
	}
	return inputs, nil
}
