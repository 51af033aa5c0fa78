package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"silica/internal/abi"
	"silica/internal/version"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path|files...]",
	Short: "Check sources and write the ABI and metadata artifacts",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}

		unit, err := compileFromArgs(cmd, args)
		if err != nil {
			return err
		}
		if err := reportDiagnostics(cmd, unit); err != nil {
			return err
		}

		if outDir == "" {
			if unit.Manifest != nil {
				outDir = unit.Manifest.OutDir()
			} else {
				outDir = "out"
			}
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		doc := abi.Build(unit.Result.Namespace, version.Version, sourceTexts(unit)...)
		encoded, err := doc.Encode()
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, unit.packageName()+".abi.json")
		if err := os.WriteFile(path, encoded, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("wrote %s", path))
		return nil
	},
}

func init() {
	buildCmd.Flags().String("out", "", "artifact directory (defaults to the manifest's [build].out)")
}

func sourceTexts(unit *compileUnit) []string {
	texts := make([]string, 0, len(unit.Inputs))
	for _, in := range unit.Inputs {
		texts = append(texts, in.Text)
	}
	return texts
}
