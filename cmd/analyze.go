package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/docify/internal/domain"
)

func analyzeCommand() *cobra.Command {
	var instructions string

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a URL once and print the result",
		Long: `Runs the full pipeline against a single URL without touching the
database and prints the analysis blocks. Requires ANTHROPIC_API_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			if cfg.Anthropic.APIKey == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY is not set")
			}

			store := &memoryStore{}
			orchestrator := newOrchestrator(cfg, store, log)

			doc := &domain.Document{
				ID:           uuid.New().String(),
				URL:          args[0],
				Instructions: instructions,
				Status:       domain.StatusPending,
			}

			if runErr := orchestrator.Run(cmd.Context(), doc); runErr != nil {
				result := store.document()
				if result != nil && result.ErrorDetail != nil {
					return fmt.Errorf("%s", *result.ErrorDetail)
				}
				return runErr
			}

			printDocument(store.document())
			return nil
		},
	}

	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "analysis instructions passed to the model")

	return cmd
}

// memoryStore satisfies the pipeline's store interface for one-shot runs.
type memoryStore struct {
	mu  sync.Mutex
	doc *domain.Document
}

func (s *memoryStore) UpdateStatus(_ context.Context, _ string, _ domain.Status) error {
	return nil
}

func (s *memoryStore) SaveResult(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *doc
	s.doc = &copied
	return nil
}

func (s *memoryStore) document() *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// printDocument renders a completed analysis to the terminal.
func printDocument(doc *domain.Document) {
	if doc == nil {
		return
	}

	fmt.Printf("\n%s\n", doc.Title)
	fmt.Printf("%s\n\n", doc.AnalysisSummary)
	fmt.Printf("Pages: %d  Words: %d  Time: %dms\n\n", doc.PagesCrawled, doc.WordCount, doc.ProcessingTimeMs)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Type", "Size", "Title"})
	for i, block := range doc.AnalysisBlocks {
		t.AppendRow(table.Row{i + 1, block.Type, block.Size, block.Title})
	}
	t.Render()
}
