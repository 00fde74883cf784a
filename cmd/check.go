package cmd

import (
	"os"

	"github.com/ethpandaops/rbi/pkg/engine"
	"github.com/ethpandaops/rbi/pkg/training"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the ML feature tables exist",
	Long:  `Counts the rows of the ANALYTICS feature tables the trainer needs.`,
	Run:   runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err == nil {
		err = cfg.Warehouse.Validate()
	}

	if err != nil {
		os.Exit(training.ExitCode(os.Stderr, err))
	}

	statuses, err := engine.CheckPrerequisites(cmd.Context(), logger, cfg)
	training.WriteCheck(os.Stdout, statuses, err)

	if err != nil {
		os.Exit(1)
	}
}
