package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"arforge/internal/catalog"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			models, err := store.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}

			rows := make([][]string, 0, len(models))
			for _, model := range models {
				if status != "" && string(model.Status) != status {
					continue
				}
				rows = append(rows, []string{
					model.ID,
					model.Name,
					string(model.Status),
					model.ShortLink,
					model.UpdatedAt.Local().Format(time.RFC3339),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No models found")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Status", "Link", "Updated"},
				rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (uploading, processing, complete, failed)")
	return cmd
}
