package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"internhunt-engine/internal/store"
)

func historyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the per-day run ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer a.close()

			snap, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			renderHistory(cmd, snap)
			return nil
		},
	}
}

func renderHistory(cmd *cobra.Command, snap store.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Date", "New", "Failed sources"})
	for _, rec := range snap.History {
		t.AppendRow(table.Row{rec.Date, rec.NewListings, strings.Join(rec.FailedSources, ", ")})
	}
	t.AppendFooter(table.Row{"Last run", snap.LastRun, fmt.Sprintf("%d seen", snap.TotalSeen)})
	t.Render()
}
