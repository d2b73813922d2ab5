package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Model generation parameters.
const (
	maxOutputTokens = 4000
	temperature     = 0.7
)

// DefaultModel is used when the configuration names none.
const DefaultModel = string(anthropic.ModelClaudeSonnet4_0)

// ModelClient generates a raw completion for a prompt. Implementations
// must be safe for concurrent use.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AnthropicClient is the production ModelClient backed by the Anthropic
// Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClient creates a client for the given API key and model.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = DefaultModel
	}

	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Complete sends the prompt as a single user message and concatenates the
// text content of the response.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxOutputTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages api: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("messages api: empty response")
	}

	return text.String(), nil
}
