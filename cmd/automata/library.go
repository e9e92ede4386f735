package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/internal/config"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse the exercise library",
	Long:  `Exercises are markdown or JSON files with the automaton in their frontmatter, kept under library.dir.`,
}

func openLibrary(cmd *cobra.Command) (*cli.App, ports.ExerciseLibrary, error) {
	a, err := getApp(cmd, func(cfg *config.Config) {
		if dir, _ := cmd.Flags().GetString("library"); dir != "" {
			cfg.Library.Dir = dir
		}
	})
	if err != nil {
		return nil, nil, err
	}
	lib, err := cli.OpenLibrary(a.Config)
	if err != nil {
		return nil, nil, err
	}
	if lib == nil {
		return nil, nil, errors.New("no exercise library at " + a.Config.Library.Dir)
	}
	return a, lib, nil
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercises",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, lib, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		exercises, err := lib.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, ex := range exercises {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-4s %s\n", ex.ID, ex.Document.Kind, ex.Title)
		}
		return nil
	},
}

var libraryTestCmd = &cobra.Command{
	Use:   "test <exercise>",
	Short: "Run an exercise's test words",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, lib, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		ex, err := lib.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		m, err := automaton.New(ex.Document.Kind, ex.Document.States, ex.Document.Transitions, automaton.WithLogger(a.Logger))
		if err != nil {
			return err
		}
		ed, err := a.Editor(m)
		if err != nil {
			return err
		}
		p := printer(cmd)
		for _, v := range ed.TestWords(ex.TestWords) {
			p.Verdict(v.Word, resultOf(v.Accepted, v.Message))
		}
		return nil
	},
}

var libraryOpenCmd = &cobra.Command{
	Use:   "open <exercise>",
	Short: "Copy an exercise into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, lib, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		ex, err := lib.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		m, err := automaton.New(ex.Document.Kind, ex.Document.States, ex.Document.Transitions, automaton.WithLogger(a.Logger))
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("as")
		if id == "" {
			id = ex.ID
		}
		return persist(cmd, a, id, m)
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd, libraryTestCmd, libraryOpenCmd)
	libraryCmd.PersistentFlags().String("library", "", "Exercise directory (overrides the config)")
	libraryOpenCmd.Flags().String("as", "", "Store under this ID instead of the exercise ID")
}
