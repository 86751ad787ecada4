package main

import (
	"os"

	"github.com/spf13/cobra"
)

// DataDirEnv lets a desktop shell point the engine at its own app directory.
const DataDirEnv = "INTERNHUNT_DATA_DIR"

type rootOptions struct {
	dataDir    string
	configPath string
	debug      bool
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "engine",
		Short:         "AI/ML internship ingestion engine",
		Long:          "Collects AI/ML internship postings from job boards, feeds, ATS APIs and mail alerts, filters them for eligibility and keeps a deduplicated dataset with a per-day run ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	def := os.Getenv(DataDirEnv)
	if def == "" {
		def = "."
	}
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", def, "directory holding the dataset, ledger, run log and user config (env "+DataDirEnv+")")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is <data-dir>/config.yml, seeded from config/config.yml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level")

	cmd.AddCommand(
		serveCmd(opts),
		runCmd(opts),
		resetCmd(opts),
		sourcesCmd(opts),
		historyCmd(opts),
	)
	return cmd
}
