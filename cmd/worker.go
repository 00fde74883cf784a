package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpandaops/rbi/pkg/engine"
	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/ethpandaops/rbi/pkg/training"
	"github.com/ethpandaops/rbi/pkg/worker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the training worker",
	Long: `The worker runs queued training runs one at a time and, when
training.schedule is set, queues runs on that cron schedule.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("Configuration loaded")

	pipeline, err := engine.NewTrainer(logger, cfg)
	if err != nil {
		return err
	}

	app, err := worker.NewApplication(logger, &cfg.Worker, &cfg.Redis, &cfg.Training, pipeline, func(report *training.Report) {
		logger.WithFields(logrus.Fields{
			"run_id":   report.RunID,
			"records":  report.Records,
			"paths":    report.Paths,
			"duration": report.Duration,
		}).Info("Models saved")
	})
	if err != nil {
		return err
	}

	observability.StartMetricsServer(cfg.MetricsAddr)

	if err := app.Start(cmd.Context()); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	return app.Stop()
}
