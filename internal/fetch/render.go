package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jonesrussell/docify/internal/logger"
)

// renderWaitCondition asks the browser to settle network activity before
// capturing the DOM.
const renderWaitCondition = "networkidle2"

// renderGotoTimeoutMs is the in-browser navigation timeout.
const renderGotoTimeoutMs = 30000

// RenderClient calls a Browserless-style /content endpoint that loads a
// page in a headless browser and returns the rendered HTML.
type RenderClient struct {
	client   *http.Client
	endpoint string
	token    string
	log      logger.Interface
}

// NewRenderClient creates a render client for the given endpoint.
func NewRenderClient(client *http.Client, endpoint, token string, log logger.Interface) *RenderClient {
	if client == nil {
		client = &http.Client{}
	}
	return &RenderClient{
		client:   client,
		endpoint: endpoint,
		token:    token,
		log:      log.WithComponent("render"),
	}
}

// renderRequest is the render service request payload.
type renderRequest struct {
	URL         string            `json:"url"`
	GotoOptions renderGotoOptions `json:"gotoOptions"`
}

type renderGotoOptions struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int    `json:"timeout"`
}

// Render loads the URL in the render service and returns the rendered HTML.
func (r *RenderClient) Render(ctx context.Context, url string) ([]byte, error) {
	payload, marshalErr := json.Marshal(renderRequest{
		URL: url,
		GotoOptions: renderGotoOptions{
			WaitUntil: renderWaitCondition,
			Timeout:   renderGotoTimeoutMs,
		},
	})
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal render request: %w", marshalErr)
	}

	endpoint := r.endpoint
	if r.token != "" {
		endpoint = fmt.Sprintf("%s?token=%s", r.endpoint, r.token)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if reqErr != nil {
		return nil, fmt.Errorf("create render request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := r.client.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("render request: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service status %d", resp.StatusCode)
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("read rendered body: %w", readErr)
	}

	return body, nil
}
