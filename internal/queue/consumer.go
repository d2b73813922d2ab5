package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// defaultConsumerGroup is the group the serve command joins.
	defaultConsumerGroup = "docify"

	// defaultBlockTimeout bounds one blocking read.
	defaultBlockTimeout = 5 * time.Second

	// defaultBatchSize is the number of messages per read.
	defaultBatchSize = 10

	// defaultClaimMinIdle is how long a message may sit unacknowledged
	// with another consumer before it is reclaimed.
	defaultClaimMinIdle = 5 * time.Minute

	// maxPendingCheck caps the pending entries examined per reclaim pass.
	maxPendingCheck = 100
)

// Consumer reads analysis requests through a consumer group.
type Consumer struct {
	client       *StreamsClient
	group        string
	consumerID   string
	blockTimeout time.Duration
	batchSize    int64
	claimMinIdle time.Duration
}

// ConsumerConfig holds consumer settings. Zero values take defaults;
// ConsumerID is required.
type ConsumerConfig struct {
	ConsumerGroup string
	ConsumerID    string
	BlockTimeout  time.Duration
	BatchSize     int64
	ClaimMinIdle  time.Duration
}

// AnalysisRequest is one message read from the queue.
type AnalysisRequest struct {
	MessageID  string
	DocumentID string
	EnqueuedAt time.Time
}

// NewConsumer creates a Consumer.
func NewConsumer(client *StreamsClient, cfg ConsumerConfig) (*Consumer, error) {
	if cfg.ConsumerID == "" {
		return nil, errors.New("consumer ID is required")
	}

	group := cfg.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}

	blockTimeout := cfg.BlockTimeout
	if blockTimeout <= 0 {
		blockTimeout = defaultBlockTimeout
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	claimMinIdle := cfg.ClaimMinIdle
	if claimMinIdle <= 0 {
		claimMinIdle = defaultClaimMinIdle
	}

	return &Consumer{
		client:       client,
		group:        group,
		consumerID:   cfg.ConsumerID,
		blockTimeout: blockTimeout,
		batchSize:    batchSize,
		claimMinIdle: claimMinIdle,
	}, nil
}

// Initialize creates the consumer group.
func (c *Consumer) Initialize(ctx context.Context) error {
	return c.client.CreateConsumerGroup(ctx, c.group)
}

// Read returns the next batch of analysis requests, reclaiming stale
// pending messages from dead consumers first.
func (c *Consumer) Read(ctx context.Context) ([]*AnalysisRequest, error) {
	if reclaimed := c.reclaimPending(ctx); len(reclaimed) > 0 {
		return reclaimed, nil
	}

	streams, err := c.client.XReadGroup(ctx, c.group, c.consumerID, c.batchSize, c.blockTimeout)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read analysis requests: %w", err)
	}

	var requests []*AnalysisRequest
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			request, parseErr := ParseMessage(msg)
			if parseErr != nil {
				// Malformed messages are acknowledged so they don't loop.
				_ = c.client.XAck(ctx, c.group, msg.ID)
				continue
			}
			requests = append(requests, request)
		}
	}

	return requests, nil
}

// Acknowledge marks a request as processed.
func (c *Consumer) Acknowledge(ctx context.Context, request *AnalysisRequest) error {
	if request == nil {
		return errors.New("request cannot be nil")
	}
	return c.client.XAck(ctx, c.group, request.MessageID)
}

// reclaimPending claims messages another consumer left unacknowledged past
// the idle threshold.
func (c *Consumer) reclaimPending(ctx context.Context) []*AnalysisRequest {
	pending, err := c.client.XPendingExt(ctx, c.group, maxPendingCheck)
	if err != nil {
		return nil
	}

	var ids []string
	for _, entry := range pending {
		if entry.Idle >= c.claimMinIdle {
			ids = append(ids, entry.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	messages, err := c.client.XClaim(ctx, c.group, c.consumerID, c.claimMinIdle, ids...)
	if err != nil {
		return nil
	}

	var requests []*AnalysisRequest
	for _, msg := range messages {
		request, parseErr := ParseMessage(msg)
		if parseErr != nil {
			_ = c.client.XAck(ctx, c.group, msg.ID)
			continue
		}
		requests = append(requests, request)
	}

	return requests
}

// ParseMessage decodes one stream message into an AnalysisRequest.
func ParseMessage(msg redis.XMessage) (*AnalysisRequest, error) {
	documentID, ok := msg.Values[DocumentIDField].(string)
	if !ok || documentID == "" {
		return nil, errors.New("missing document id")
	}

	request := &AnalysisRequest{
		MessageID:  msg.ID,
		DocumentID: documentID,
	}

	if enqueuedStr, has := msg.Values[EnqueuedAtField].(string); has {
		if t, parseErr := time.Parse(time.RFC3339, enqueuedStr); parseErr == nil {
			request.EnqueuedAt = t
		}
	}

	return request, nil
}
