package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/russross/blackfriday/v2"
	"github.com/spf13/cobra"
)

var definitionCmd = &cobra.Command{
	Use:   "definition <ref>",
	Short: "Print the formal definition (alphabet, states, relation, initial, finals)",
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
		def := m.FormalDefinition()
		md := def.Markdown() + "\n## Transition table\n\n" + m.TransitionTable().Markdown()

		switch format, _ := cmd.Flags().GetString("format"); format {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(def)
		case "html":
			_, err := cmd.OutOrStdout().Write(blackfriday.Run([]byte(md), blackfriday.WithExtensions(blackfriday.CommonExtensions)))
			return err
		case "markdown", "":
			out, err := tui.NewRenderer(useColor(cmd))(md)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		default:
			return fmt.Errorf("unknown format %q", format)
		}
	},
}

var tableCmd = &cobra.Command{
	Use:   "table <ref>",
	Short: "Print the transition table",
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
		out, err := tui.NewRenderer(useColor(cmd))(m.TransitionTable().Markdown())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <ref>",
	Short: "Export the automaton as a Mermaid diagram",
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
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(m, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(definitionCmd, tableCmd, graphCmd)
	definitionCmd.Flags().String("format", "markdown", "Output format: markdown, json or html")
}
