package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/internal/config"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <ref> [words...]",
	Short: "Run words through an automaton",
	Long:  `Runs each word to completion and prints whether it is accepted. With no words the empty word is tested.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		m, err := a.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		ed, err := a.Editor(m)
		if err != nil {
			return err
		}
		words := args[1:]
		if len(words) == 0 {
			words = []string{""}
		}

		verdicts := ed.TestWords(words)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(verdicts)
		}
		p := printer(cmd)
		for i, v := range verdicts {
			p.Verdict(words[i], resultOf(v.Accepted, v.Message))
		}
		return nil
	},
}

var traceCmd = &cobra.Command{
	Use:   "trace <ref> <word>",
	Short: "Step a word through an automaton and print every configuration",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		m, err := a.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		word := ""
		if len(args) == 2 {
			word = args[1]
		}
		_, err = cli.Trace(a, m, word, printer(cmd))
		return err
	},
}

var animateCmd = &cobra.Command{
	Use:   "animate <ref> <word>",
	Short: "Play a word step by step on a timer",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd, func(cfg *config.Config) {
			if interval, _ := cmd.Flags().GetString("interval"); interval != "" {
				cfg.Simulation.Interval = interval
			}
		})
		if err != nil {
			return err
		}
		m, err := a.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		word := ""
		if len(args) == 2 {
			word = args[1]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		res, err := cli.Animate(ctx, a, m, word, cmd.OutOrStdout(), useColor(cmd))
		if cli.IsInterrupted(err) {
			fmt.Fprintf(cmd.OutOrStdout(), "\ninterrupted (%v)\n", ctx.Signal())
			return nil
		}
		if err != nil {
			return err
		}
		printer(cmd).Verdict(word, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd, traceCmd, animateCmd)
	simulateCmd.Flags().Bool("json", false, "Print verdicts as JSON")
	animateCmd.Flags().String("interval", "", "Delay between steps, e.g. 300ms (overrides the config)")
}
