package main

import (
	"fmt"
	"os"

	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/internal/config"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "automata",
	Short: "Automata is an editor, simulator and converter for DFA, NFA and PDA",
	Long: `Automata validates, simulates and converts finite and pushdown automata
stored as JSON or YAML documents, and serves them over HTTP and MCP.

Commands take a reference that is either a document file (.json, .yaml)
or the ID of an automaton in the configured store.`,
	SilenceUsage: true,
}

// app is opened lazily so commands like version never touch the store.
var app *cli.App

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer func() {
		if app != nil {
			_ = app.Close()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "automata.yaml", "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides the config)")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory, file, redis, bolt (overrides the config)")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file store (overrides the config)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Store.Dir = dir
	}
	return cfg, cfg.Validate()
}

// getApp opens the application once. mutate adjusts the config before it is validated.
func getApp(cmd *cobra.Command, mutate ...func(*config.Config)) (*cli.App, error) {
	if app != nil {
		return app, nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel())
	a, err := cli.NewApp(cfg, logger)
	if err != nil {
		return nil, err
	}
	app = a
	return app, nil
}

func useColor(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return !noColor && tui.IsTerminal(cmd.OutOrStdout())
}

func printer(cmd *cobra.Command) *tui.Printer {
	return tui.NewPrinter(cmd.OutOrStdout(), useColor(cmd))
}
