package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/pkg/validator"
	"github.com/spf13/cobra"
)

var errFatal = errors.New("automaton has errors")

var checkCmd = &cobra.Command{
	Use:   "check <ref>",
	Short: "Validate an automaton",
	Long:  `Runs the structural checks for the automaton's kind and prints every finding. Exits non-zero on errors.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		watch, _ := cmd.Flags().GetBool("watch")
		p := printer(cmd)

		if watch {
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			return cli.WatchFile(ctx, args[0], a.Logger, func() {
				m, err := cli.ReadFile(args[0])
				if err != nil {
					cli.PrintSystemMessage(cmd.OutOrStdout(), "%v", err)
					return
				}
				ed, err := a.Editor(m)
				if err != nil {
					cli.PrintSystemMessage(cmd.OutOrStdout(), "%v", err)
					return
				}
				ds := ed.Check()
				cli.PrintSystemMessage(cmd.OutOrStdout(), "%s: %d finding(s)", args[0], len(ds))
				for _, d := range ds {
					p.Diagnostic(d)
				}
			})
		}

		m, err := a.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		ed, err := a.Editor(m)
		if err != nil {
			return err
		}
		ds := ed.Check()
		for _, d := range ds {
			p.Diagnostic(d)
		}
		if validator.HasFatal(ds) {
			return errFatal
		}
		if len(ds) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Automaton is valid! ✅")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("watch", "w", false, "Re-check the file whenever it changes")
}
