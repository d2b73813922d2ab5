package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/docify/internal/database"
	"github.com/jonesrussell/docify/internal/domain"
)

func documentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect stored documents",
	}

	cmd.AddCommand(documentsListCommand())

	return cmd
}

func documentsListCommand() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Connect(database.Config(cfg.Database))
			if err != nil {
				return err
			}
			defer db.Close()

			repo := database.NewDocumentRepository(db)
			docs, err := repo.List(cmd.Context(), database.ListFilters{
				Status: domain.Status(status),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Status", "Title", "URL", "Blocks", "Created"})
			for _, doc := range docs {
				t.AppendRow(table.Row{
					doc.ID,
					doc.Status,
					doc.Title,
					doc.URL,
					len(doc.AnalysisBlocks),
					doc.CreatedAt.Format(time.RFC3339),
				})
			}
			t.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, scraping, analyzing, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum documents to list")

	return cmd
}
