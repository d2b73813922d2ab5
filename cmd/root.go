// Package cmd implements the docify command-line interface: the serve
// command runs the HTTP API and queue worker, analyze runs a one-shot
// analysis from the terminal, and documents inspects stored results.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/docify/internal/config"
	"github.com/jonesrussell/docify/internal/logger"
)

const version = "1.0.0"

var (
	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "docify",
		Short: "Document ingestion and AI analysis service",
		Long: `Docify ingests a web URL, extracts its content, and uses an Anthropic
model to produce structured analysis blocks packed into a display grid.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("docify version %s\n", version)
		},
	})

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(analyzeCommand())
	rootCmd.AddCommand(documentsCommand())
}

// loadConfig loads configuration and applies the debug flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if debug {
		cfg.App.Debug = true
		cfg.Logger.Level = "debug"
	}

	return cfg, nil
}

// newLogger builds the zap-backed logger from config.
func newLogger(cfg *config.Config) (logger.Interface, error) {
	log, err := logger.New(&logger.Config{
		Level:       logger.Level(cfg.Logger.Level),
		Development: cfg.App.Environment == "development",
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}
