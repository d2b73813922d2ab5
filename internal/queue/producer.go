package queue

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Producer enqueues analysis requests.
type Producer struct {
	client *StreamsClient
}

// NewProducer creates a Producer.
func NewProducer(client *StreamsClient) *Producer {
	return &Producer{client: client}
}

// Enqueue adds a document id to the analysis-request stream and returns
// the message id.
func (p *Producer) Enqueue(ctx context.Context, documentID string) (string, error) {
	if documentID == "" {
		return "", errors.New("document id is required")
	}

	msgID, err := p.client.XAdd(ctx, requestValues(documentID, time.Now()))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue analysis request: %w", err)
	}

	return msgID, nil
}

// requestValues builds the stream message payload.
func requestValues(documentID string, enqueuedAt time.Time) map[string]any {
	return map[string]any{
		DocumentIDField: documentID,
		EnqueuedAtField: enqueuedAt.UTC().Format(time.RFC3339),
	}
}
