// Package main implements the silica CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"silica/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "silica",
	Short: "Silica contract language compiler and toolchain",
	Long:  "Silica compiles contracts for the EVM, Wasm and SVM deployment targets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, err := cmd.Flags().GetString("color")
		if err != nil {
			return err
		}
		switch mode {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		case "auto":
			// fatih/color already detects ttys and NO_COLOR.
		default:
			return fmt.Errorf("unsupported --color mode %q (auto|on|off)", mode)
		}
		return nil
	},
}

func main() {
	rootCmd.Version = version.Version
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(abiCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("target", "", "deployment target (evm|wasm|svm), overrides the manifest")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("error"), err)
		os.Exit(1)
	}
}
