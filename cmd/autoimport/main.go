// Package main provides the entry point for the autoimport CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/autoimport/cmd/autoimport/commands"
	"github.com/Sumatoshi-tech/autoimport/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := commands.NewFixCommand()

	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, version.String("autoimport"))
		},
	}
}
