package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of automata",
	Run: func(cmd *cobra.Command, args []string) {
		if useColor(cmd) {
			tui.PrintBanner(cmd.OutOrStdout(), automata.Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "automata version %s\n", strings.TrimSpace(automata.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
