package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpandaops/rbi/pkg/engine"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the dashboard pages and the HTTP API",
	Long: `Serves the six dashboard pages as HTML and JSON, the query cache
controls, promotion predictions and training triggers.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger.WithField("config", cfgFile).Info("Configuration loaded")

	svc, err := engine.NewService(logger, cfg)
	if err != nil {
		return err
	}

	if err := svc.Start(cmd.Context()); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	return svc.Stop()
}
