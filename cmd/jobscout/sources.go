package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured job sources",
	Long:  "Reads the config and prints a table of every job source and board company.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-28s %-12s %s\n", "Source", "Kind", "Status")
	fmt.Fprintln(out, strings.Repeat("─", 50))

	enabled, disabled := 0, 0
	row := func(name, kind string, on bool) {
		status := "enabled"
		if on {
			enabled++
		} else {
			status = "disabled"
			disabled++
		}
		fmt.Fprintf(out, "%-28s %-12s %s\n", truncate(name, 28), kind, status)
	}

	src := cfg.Sources
	for _, c := range src.Boards.Companies {
		row(c.Name, c.ATS, src.Boards.Enabled && c.Enabled)
	}
	for _, w := range src.Workday {
		row(w.Name, "workday", w.Enabled)
	}
	row("Microsoft Careers", "microsoft", src.Microsoft.Enabled)
	row("Adzuna", "adzuna", src.Adzuna.Enabled)
	row("RemoteOK", "remoteok", src.RemoteOK.Enabled)
	row("Programmable Search", "websearch", src.WebSearch.Enabled)
	for _, b := range src.Browser {
		row(b.Name, "browser", b.Enabled)
	}

	fmt.Fprintf(out, "\nTotal: %d sources (%d enabled, %d disabled)\n", enabled+disabled, enabled, disabled)
	return nil
}
