package main

import (
	"github.com/spf13/cobra"

	"business-admin/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DBDriver == config.DriverMemory {
			appLogger.Warn("Nothing to migrate for the memory driver")
			return nil
		}
		// openStore applies the schema
		st, err := openStore(cmd.Context(), cfg, appLogger)
		if err != nil {
			return err
		}
		defer st.Close()
		appLogger.Info("Schema is up to date")
		return nil
	},
}
