package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"silica/internal/abi"
	"silica/internal/diag"
	"silica/internal/version"
)

var abiCmd = &cobra.Command{
	Use:   "abi [flags] [path|files...]",
	Short: "Print the JSON ABI of a project or file set",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := compileFromArgs(cmd, args)
		if err != nil {
			return err
		}
		if !unit.Result.Ok() {
			reporter := diag.NewReporter(unit.Result.Files)
			fmt.Fprint(cmd.ErrOrStderr(), reporter.FormatAll(unit.Result.Bag))
			return fmt.Errorf("cannot export ABI with unresolved errors")
		}

		doc := abi.Build(unit.Result.Namespace, version.Version, sourceTexts(unit)...)
		encoded, err := doc.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(encoded))
		return nil
	},
}
