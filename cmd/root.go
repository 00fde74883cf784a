// Package cmd contains the CLI commands for RBI
package cmd

import (
	"fmt"
	"os"

	"github.com/ethpandaops/rbi/pkg/engine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile string
	logger  *logrus.Logger
)

// rootCmd represents the base command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "rbi",
	Short: "Retail BI - sales dashboard and promotion model trainer",
	Long: `RBI serves a retail business-intelligence dashboard over the SILVER
warehouse tables and trains the promotion success and sales-lift models
from the ANALYTICS feature table.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error, fatal, panic); overrides the config file")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "./config.yaml"
	}
}

// loadConfig reads the config file and applies the log level, the flag
// taking precedence over the file
func loadConfig() (*engine.Config, error) {
	cfg, err := engine.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	logLevel, err := rootCmd.PersistentFlags().GetString("log-level")
	if err != nil || logLevel == "" {
		logLevel = cfg.Logging
	}

	level, parseErr := logrus.ParseLevel(logLevel)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	cfg.Logging = level.String()

	return cfg, nil
}
