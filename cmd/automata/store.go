package main

import (
	"fmt"

	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the automata in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		ids, err := a.Manager.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <id> <file>",
	Short: "Store a document file under an ID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		m, err := cli.ReadFile(args[1], automaton.WithLogger(a.Logger))
		if err != nil {
			return err
		}
		return persist(cmd, a, args[0], m)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Print a stored automaton as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		m, err := a.Manager.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		data, err := m.Export(automaton.Format(format))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:   "new <id>",
	Short: "Create an empty automaton in the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		k, _ := cmd.Flags().GetString("kind")
		kind, err := domain.ParseKind(k)
		if err != nil {
			return err
		}
		_, err = a.Manager.LoadOrCreate(cmd.Context(), args[0], kind)
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an automaton from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		return a.Manager.Delete(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd, importCmd, exportCmd, newCmd, deleteCmd)
	exportCmd.Flags().String("format", "json", "Output format: json or yaml")
	newCmd.Flags().String("kind", "dfa", "Kind of the new automaton: dfa, nfa or pda")
}
