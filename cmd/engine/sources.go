package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"internhunt-engine/internal/source"
)

func sourcesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the source families and the adapters each one runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer a.close()
			renderSources(cmd, a.sources.Current())
			return nil
		},
	}
}

func renderSources(cmd *cobra.Command, r *source.Registry) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Adapters", "Count"})

	total := 0
	for _, fam := range r.Families() {
		as := r.Adapters(fam)
		names := make([]string, 0, len(as))
		for _, ad := range as {
			names = append(names, ad.Name())
		}
		total += len(as)
		t.AppendRow(table.Row{fam, strings.Join(names, ", "), len(as)})
	}
	t.AppendFooter(table.Row{"", "Total", fmt.Sprint(total)})
	t.Render()
}
