package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"business-admin/internal/cache"
	"business-admin/internal/categorizer"
	"business-admin/internal/mailer"
)

var categorizeInput categorizer.Input

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Score a message against the stored categories and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if categorizeInput.Subject == "" && categorizeInput.Body == "" && categorizeInput.From == "" {
			return errors.New("give at least one of --subject, --body or --from")
		}

		st, err := openStore(cmd.Context(), cfg, appLogger)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := newServices(cfg, st.repos, nil, mailer.NewLogMailer(appLogger), cache.NewNoopCache(), appLogger)
		seedCategories(cmd.Context(), cfg.CategoriesFile, svc.categories, appLogger)

		result, err := svc.emails.PreviewCategorization(cmd.Context(), categorizeInput)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	categorizeCmd.Flags().StringVar(&categorizeInput.Subject, "subject", "", "Message subject")
	categorizeCmd.Flags().StringVar(&categorizeInput.Body, "body", "", "Message body")
	categorizeCmd.Flags().StringVar(&categorizeInput.From, "from", "", "Sender address")
}
