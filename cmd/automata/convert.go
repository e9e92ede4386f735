package main

import (
	"github.com/aretw0/automata/pkg/domain"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <ref>",
	Short: "Convert an automaton to another kind",
	Long: `Converts between DFA, NFA and PDA. NFA to DFA runs the subset construction;
PDA to DFA/NFA drops the stack operations.

Stored automata are updated in place; files are printed unless --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		to, _ := cmd.Flags().GetString("to")
		target, err := domain.ParseKind(to)
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
		if err := ed.SwitchKind(target); err != nil {
			return err
		}
		return persist(cmd, a, args[0], ed.Model())
	},
}

var sinkCmd = &cobra.Command{
	Use:   "sink <ref>",
	Short: "Complete a DFA with a sink state",
	Args:  cobra.ExactArgs(1),
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
		if err := ed.AddSinkState(); err != nil {
			return err
		}
		return persist(cmd, a, args[0], ed.Model())
	},
}

func init() {
	rootCmd.AddCommand(convertCmd, sinkCmd)
	convertCmd.Flags().String("to", "", "Target kind: dfa, nfa or pda")
	_ = convertCmd.MarkFlagRequired("to")
	for _, c := range []*cobra.Command{convertCmd, sinkCmd} {
		c.Flags().StringP("out", "o", "", "Write the result to this file (.json or .yaml)")
	}
}
