package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print the search queries discovery would run",
	Long:  "Expands every configured role interest into search queries (synonyms, locations, level modifiers) and prints the merged list.",
	RunE:  runQueries,
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	if len(cfg.Roles) == 0 {
		fmt.Fprintln(out, "No roles configured; add a roles: section to the config.")
		return nil
	}

	silent := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := newOrchestrator(cfg, nil, nil, "queries", silent)
	queries := orch.Queries()
	for i, q := range queries {
		fmt.Fprintf(out, "%3d  %s\n", i+1, q)
	}
	fmt.Fprintf(out, "\nTotal: %d queries for %d roles\n", len(queries), len(cfg.Roles))
	return nil
}
