package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"business-admin/internal/logger"
	"business-admin/internal/service"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the default categories into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.CategoriesFile
		if seedFile != "" {
			path = seedFile
		}
		defaults, err := readDefaultCategories(path)
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context(), cfg, appLogger)
		if err != nil {
			return err
		}
		defer st.Close()

		categories := service.NewCategoryService(st.repos.Categories, st.repos.Emails, appLogger)
		created, err := categories.SeedDefaults(cmd.Context(), defaults)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d categories created\n", created)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Categories JSON file (default CATEGORIES_FILE)")
}

// readDefaultCategories parses a JSON array of category definitions.
func readDefaultCategories(path string) ([]service.CategoryInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var defaults []service.CategoryInput
	if err := json.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return defaults, nil
}

// seedCategories loads defaults on startup. A missing file only means no
// defaults.
func seedCategories(ctx context.Context, path string, categories service.CategoryService, log *logger.Logger) {
	if path == "" {
		return
	}
	defaults, err := readDefaultCategories(path)
	if err != nil {
		log.Warn("Skipping default categories:", err)
		return
	}
	created, err := categories.SeedDefaults(ctx, defaults)
	if err != nil {
		log.Error("Failed to seed default categories:", err)
		return
	}
	if created > 0 {
		log.Info("Loaded", created, "default categories")
	}
}
