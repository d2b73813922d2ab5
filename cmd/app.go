package cmd

import (
	"net/http"

	"github.com/jonesrussell/docify/internal/analyze"
	"github.com/jonesrussell/docify/internal/config"
	"github.com/jonesrussell/docify/internal/crawl"
	"github.com/jonesrussell/docify/internal/fetch"
	"github.com/jonesrussell/docify/internal/logger"
	"github.com/jonesrussell/docify/internal/pipeline"
)

// newFetcher wires the persona fetcher, with the render fallback when a
// render endpoint is configured.
func newFetcher(cfg *config.Config, log logger.Interface) *fetch.Fetcher {
	fetchCfg := fetch.Config{
		AttemptTimeout:  cfg.Fetch.AttemptTimeout,
		SparseThreshold: cfg.Fetch.SparseThreshold,
		RenderEndpoint:  cfg.Fetch.RenderEndpoint,
		RenderToken:     cfg.Fetch.RenderToken,
	}

	var renderer fetch.Renderer
	if cfg.Fetch.RenderEndpoint != "" {
		renderer = fetch.NewRenderClient(nil, cfg.Fetch.RenderEndpoint, cfg.Fetch.RenderToken, log)
	}

	return fetch.New(&http.Client{}, renderer, log, fetchCfg)
}

// newOrchestrator wires the full pipeline for a given store.
func newOrchestrator(cfg *config.Config, store pipeline.DocumentStore, log logger.Interface) *pipeline.Orchestrator {
	fetcher := newFetcher(cfg, log)

	var crawler pipeline.Crawler
	if cfg.Crawl.Enabled {
		crawler = crawl.New(log, crawl.Config{
			MaxPages: cfg.Crawl.MaxPages,
			MaxDepth: cfg.Crawl.MaxDepth,
		})
	}

	model := analyze.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	analyzer := analyze.New(model, log)

	return pipeline.New(store, fetcher, crawler, analyzer, log)
}
