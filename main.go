package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"business-admin/internal/config"
	"business-admin/internal/logger"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	envFile   string
	cfg       *config.Config
	appLogger *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:          "business-admin",
	Short:        "Business administration backend",
	Long:         "Serves the business-admin API: email triage, catalog, quotations, clients and appointments.",
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		}

		c, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
		cfg = c

		level := logger.ParseLevel(cfg.LogLevel)
		if cmd.Name() == serveCmd.Name() || cmd == cmd.Root() {
			appLogger, err = logger.NewFileLogger(cfg.LogDir, level)
			if err != nil {
				return err
			}
			return nil
		}
		// one-shot commands keep stdout for their own output
		appLogger = logger.NewWithWriter(os.Stderr)
		appLogger.SetLevel(level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			appLogger.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file before .env")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(categorizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
