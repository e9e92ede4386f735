package main

import (
	"fmt"
	"os"

	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/spf13/cobra"
)

func resultOf(accepted bool, message string) domain.Result {
	return domain.Result{Success: accepted, Message: message, FinalStep: true}
}

func isFile(ref string) bool {
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}

// persist writes m to --out when given, back into the store when ref is a
// store ID, and to stdout otherwise.
func persist(cmd *cobra.Command, a *cli.App, ref string, m *automaton.Model) error {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := cli.WriteFile(out, m); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "written to %s", out)
		return nil
	}
	if !isFile(ref) {
		if err := a.Manager.Save(cmd.Context(), ref, m); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "saved %s (%s, %d states)", ref, m.Kind(), len(m.States()))
		return nil
	}
	data, err := m.Export(automaton.FormatFromPath(ref))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
