// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdocx/internal/history"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversions",
	Long: `History lists conversions recorded in the local history database, most
recent first. Recording can be turned off with history.enabled: false in the
config file.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().Bool("failed", false, "show failed conversions only")
	historyCmd.Flags().String("batch", "", "show entries of one batch run")
	historyCmd.Flags().Bool("json", false, "print as JSON")
	historyCmd.Flags().Bool("yaml", false, "print as YAML")
	historyCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyPath(viper.GetViper()))
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	failed, _ := cmd.Flags().GetBool("failed")
	batch, _ := cmd.Flags().GetString("batch")
	f := history.Filter{Limit: limit, FailedOnly: failed, BatchID: batch}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return store.Export(ctx, out, f, history.FormatJSON)
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return store.Export(ctx, out, f, history.FormatYAML)
	}

	entries, err := store.List(ctx, f)
	if err != nil {
		return err
	}
	writeHistoryTable(out, entries)
	return nil
}

func writeHistoryTable(w io.Writer, entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-9s  %5s  %8s  %s\n", "Started", "Status", "Pages", "Time", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s  %-9s  %5d  %8s  %s -> %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Status, e.Pages, e.Duration.Round(10*time.Millisecond), e.Source, e.Destination)
		if e.Error != "" {
			fmt.Fprintf(w, "%-20s  %s\n", "", e.Error)
		}
	}
}
