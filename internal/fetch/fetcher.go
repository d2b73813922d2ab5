// Package fetch retrieves URLs using an ordered list of request personas,
// advancing to the next persona on failure and optionally delegating to a
// JS-rendering service when static HTML is too sparse to be useful.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonesrussell/docify/internal/logger"
)

// ErrAllPersonasFailed is returned when every persona attempt failed and
// no render fallback produced content.
var ErrAllPersonasFailed = errors.New("all fetch personas failed")

// Result is the outcome of a successful fetch.
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string
	Persona     string
	Rendered    bool
}

// Renderer renders a URL through a headless-browser service.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// Fetcher retrieves URLs with persona fallback.
type Fetcher struct {
	client   *http.Client
	renderer Renderer
	personas []Persona
	log      logger.Interface
	cfg      Config
}

// New creates a Fetcher. The renderer may be nil, which disables the
// JS-rendering fallback.
func New(client *http.Client, renderer Renderer, log logger.Interface, cfg Config) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{
		client:   client,
		renderer: renderer,
		personas: Personas(),
		log:      log.WithComponent("fetch"),
		cfg:      cfg.WithDefaults(),
	}
}

// Fetch retrieves the URL, trying each persona in order. A 2xx response
// wins unless its body is under the sparse threshold, in which case later
// personas and finally the renderer get a chance to do better. The longest
// body seen is kept. The caller's context carries the per-document
// wall-clock budget; each attempt additionally gets its own timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	var best *Result
	var lastErr error

	for _, persona := range f.personas {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch budget exhausted: %w", ctx.Err())
		}

		result, err := f.attempt(ctx, url, persona)
		if err != nil {
			lastErr = err
			f.log.Debug("persona attempt failed",
				"persona", persona.Name,
				"url", url,
				"error", err.Error(),
			)
			continue
		}

		if best == nil || len(result.Body) > len(best.Body) {
			best = result
		}

		// Enough content from a static fetch; no need for more personas.
		if len(result.Body) >= f.cfg.SparseThreshold {
			return result, nil
		}

		f.log.Debug("content below sparse threshold, trying next persona",
			"persona", persona.Name,
			"bytes", len(result.Body),
		)
	}

	if rendered := f.tryRender(ctx, url, best); rendered != nil {
		return rendered, nil
	}

	if best != nil {
		return best, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllPersonasFailed, lastErr)
	}
	return nil, ErrAllPersonasFailed
}

// attempt performs a single GET with one persona's headers.
func (f *Fetcher) attempt(ctx context.Context, url string, persona Persona) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
	defer cancel()

	req, reqErr := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, http.NoBody)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %w", reqErr)
	}

	for key, value := range persona.Headers {
		req.Header.Set(key, value)
	}

	resp, doErr := f.client.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("http fetch: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, f.cfg.MaxBodyBytes)
	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %w", readErr)
	}

	return &Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Persona:     persona.Name,
	}, nil
}

// tryRender delegates to the render service once when static content is
// missing or sparse. The rendered body is accepted only when it is longer
// than what static fetching produced.
func (f *Fetcher) tryRender(ctx context.Context, url string, best *Result) *Result {
	if f.renderer == nil {
		return nil
	}
	if best != nil && len(best.Body) >= f.cfg.SparseThreshold {
		return nil
	}

	renderCtx, cancel := context.WithTimeout(ctx, f.cfg.RenderTimeout)
	defer cancel()

	body, err := f.renderer.Render(renderCtx, url)
	if err != nil {
		f.log.Warn("render service failed", "url", url, "error", err.Error())
		return nil
	}

	if best != nil && len(body) <= len(best.Body) {
		f.log.Debug("render returned no more content than static fetch",
			"static_bytes", len(best.Body),
			"rendered_bytes", len(body),
		)
		return nil
	}

	f.log.Info("accepted rendered content", "url", url, "bytes", len(body))

	return &Result{
		Body:        body,
		StatusCode:  http.StatusOK,
		ContentType: "text/html",
		Persona:     "renderer",
		Rendered:    true,
	}
}
