package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"silica/internal/diag"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path|files...]",
	Short: "Parse and resolve sources, reporting diagnostics",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := compileFromArgs(cmd, args)
		if err != nil {
			return err
		}
		return reportDiagnostics(cmd, unit)
	},
}

func reportDiagnostics(cmd *cobra.Command, unit *compileUnit) error {
	out := cmd.OutOrStdout()

	reporter := diag.NewReporter(unit.Result.Files)
	fmt.Fprint(out, reporter.FormatAll(unit.Result.Bag))

	errs := unit.Result.Bag.ErrorCount()
	warns := unit.Result.Bag.WarningCount()
	elapsed := formatDuration(unit.Elapsed)
	switch {
	case errs > 0:
		fmt.Fprintln(out, color.RedString("%d error(s), %d warning(s) after %s", errs, warns, elapsed))
		return fmt.Errorf("check failed on target %s", unit.Target)
	case warns > 0:
		fmt.Fprintln(out, color.YellowString("ok with %d warning(s) on target %s in %s", warns, unit.Target, elapsed))
	default:
		fmt.Fprintln(out, color.GreenString("ok on target %s in %s", unit.Target, elapsed))
	}
	return nil
}
