package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/scrape"
)

func runCmd(root *rootOptions) *cobra.Command {
	var (
		dryRun   bool
		sources  []string
		regions  []string
		topics   []string
		paidOnly bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one ingestion pass in the foreground and print its summary",
		Example: `  engine run
  engine run --source internshala,naukri --paid-only
  engine run --region remote,worldwide --topic nlp,cv --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer a.close()

			cfg := a.cfg.Run
			flags := cmd.Flags()
			if flags.Changed("source") {
				cfg.Sources = sources
			}
			if flags.Changed("region") {
				cfg.Regions = regions
			}
			if flags.Changed("topic") {
				cfg.Topics = topics
			}
			if flags.Changed("paid-only") {
				cfg.PaidOnly = paidOnly
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sum, err := a.runner.Run(ctx, cfg, scrape.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&dryRun, "dry-run", false, "fetch and filter without touching the dataset or the ledger")
	f.StringSliceVar(&sources, "source", nil, "source families to run (default: run.sources from config, empty means all)")
	f.StringSliceVar(&regions, "region", nil, "regions to target: "+strings.Join(domain.AllRegions, ", ")+" (default: all)")
	f.StringSliceVar(&topics, "topic", nil, "topics to target: "+strings.Join(domain.AllTopics, ", ")+" (default: all; genai is an alias of llm)")
	f.BoolVar(&paidOnly, "paid-only", false, "drop listings that state no stipend; stated stipends below filters.min_stipend_inr are dropped either way")
	return cmd
}
