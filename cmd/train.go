package cmd

import (
	"os"

	"github.com/ethpandaops/rbi/pkg/engine"
	r "github.com/ethpandaops/rbi/pkg/redis"
	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/ethpandaops/rbi/pkg/training"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var trainEnqueue bool

//nolint:gochecknoglobals // Cobra commands are typically global
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the promotion success and sales-lift models",
	Long: `Loads ANALYTICS.ML_PROMO_EFFECTIVENESS, fits the success classifier and
the sales-lift regressor, prints their evaluation and writes them to the
models directory. Exits 1 when the feature table is missing.

Examples:
  # Train in this process
  rbi train

  # Queue a run for the worker instead
  rbi train --enqueue`,
	Run: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().BoolVar(&trainEnqueue, "enqueue", false, "Queue a run for `rbi worker` instead of training in this process")
}

func runTrain(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err == nil {
		err = cfg.Validate()
	}

	if err != nil {
		os.Exit(training.ExitCode(os.Stderr, err))
	}

	if trainEnqueue {
		os.Exit(training.ExitCode(os.Stderr, enqueueTraining(&cfg.Redis, cfg.Worker.Queue)))
	}

	pipeline, err := engine.NewTrainer(logger, cfg)
	if err != nil {
		os.Exit(training.ExitCode(os.Stderr, err))
	}

	report, err := pipeline.Run(cmd.Context())
	if code := training.ExitCode(os.Stderr, err); code != 0 {
		os.Exit(code)
	}

	report.Write(os.Stdout)
}

func enqueueTraining(redisCfg *r.Config, queue string) error {
	if err := redisCfg.Validate(); err != nil {
		return err
	}

	asynqOpt, err := redisCfg.AsynqOptions()
	if err != nil {
		return err
	}

	qm := tasks.NewQueueManager(asynqOpt, redisCfg.PrefixQueue(queue))
	defer qm.Close()

	info, err := qm.EnqueueTraining(tasks.TrainingPayload{Trigger: tasks.TriggerCLI})
	if err != nil {
		return err
	}

	logger.WithField("task_id", info.ID).WithField("queue", info.Queue).Info("Queued training run")

	return nil
}
