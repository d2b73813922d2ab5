// Package queue provides the Redis Streams analysis-request queue.
// Producers enqueue document ids; the serve command's consumer picks them
// up through a consumer group and runs the pipeline.
package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// defaultConnectionTimeout bounds the startup ping.
	defaultConnectionTimeout = 2 * time.Second

	// defaultPrefix namespaces the stream keys.
	defaultPrefix = "docify"

	// analysisStreamSuffix is appended to the prefix to form the
	// analysis-request stream key.
	analysisStreamSuffix = "analysis:requests"
)

// Message field names.
const (
	DocumentIDField = "document_id"
	EnqueuedAtField = "enqueued_at"
)

// StreamsClient wraps a Redis client with streams operations scoped to the
// analysis-request stream.
type StreamsClient struct {
	client *redis.Client
	prefix string
}

// StreamsConfig holds Redis connection settings.
type StreamsConfig struct {
	Addr     string
	Password string `json:"-"`
	DB       int
	Prefix   string
}

// NewStreamsClient connects to Redis and verifies the connection.
func NewStreamsClient(cfg StreamsConfig) (*StreamsClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewStreamsClientFromRedis(client, cfg.Prefix), nil
}

// NewStreamsClientFromRedis wraps an existing Redis client.
func NewStreamsClientFromRedis(client *redis.Client, prefix string) *StreamsClient {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &StreamsClient{client: client, prefix: prefix}
}

// StreamName returns the analysis-request stream key.
func (c *StreamsClient) StreamName() string {
	return fmt.Sprintf("%s:%s", c.prefix, analysisStreamSuffix)
}

// Close closes the underlying Redis client.
func (c *StreamsClient) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *StreamsClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// CreateConsumerGroup creates the consumer group if it doesn't exist.
func (c *StreamsClient) CreateConsumerGroup(ctx context.Context, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, c.StreamName(), group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// XAdd adds a message to the analysis-request stream.
func (c *StreamsClient) XAdd(ctx context.Context, values map[string]any) (string, error) {
	return c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.StreamName(),
		Values: values,
	}).Result()
}

// XReadGroup reads messages through a consumer group.
func (c *StreamsClient) XReadGroup(
	ctx context.Context, group, consumer string, count int64, block time.Duration,
) ([]redis.XStream, error) {
	return c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{c.StreamName(), ">"},
		Count:    count,
		Block:    block,
	}).Result()
}

// XAck acknowledges processed messages.
func (c *StreamsClient) XAck(ctx context.Context, group string, ids ...string) error {
	return c.client.XAck(ctx, c.StreamName(), group, ids...).Err()
}

// XPendingExt returns detailed pending entries.
func (c *StreamsClient) XPendingExt(
	ctx context.Context, group string, count int64,
) ([]redis.XPendingExt, error) {
	return c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.StreamName(),
		Group:  group,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
}

// XClaim claims pending messages for this consumer.
func (c *StreamsClient) XClaim(
	ctx context.Context, group, consumer string, minIdle time.Duration, ids ...string,
) ([]redis.XMessage, error) {
	return c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.StreamName(),
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
}

// XLen returns the stream length.
func (c *StreamsClient) XLen(ctx context.Context) (int64, error) {
	return c.client.XLen(ctx, c.StreamName()).Result()
}
