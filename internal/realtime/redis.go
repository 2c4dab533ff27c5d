package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/solmount/enquiry-api/internal/config"
	"github.com/solmount/enquiry-api/internal/domain"
	"go.uber.org/zap"
)

const (
	userTopicPrefix    = "rt:user:"
	roleTopicPrefix    = "rt:role:"
	enquiryTopicPrefix = "rt:enquiry:"
)

// RedisChannel publishes events over Redis pub/sub. Frontend gateways
// subscribe to the topics and fan out to websocket clients.
type RedisChannel struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisChannel connects to Redis and verifies the connection
func NewRedisChannel(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*RedisChannel, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisChannel{
		client: client,
		logger: logger,
	}, nil
}

// NewRedisChannelFromClient wraps an existing client (used in tests)
func NewRedisChannelFromClient(client *redis.Client, logger *zap.Logger) *RedisChannel {
	return &RedisChannel{
		client: client,
		logger: logger,
	}
}

func (c *RedisChannel) EmitToUser(ctx context.Context, userID uuid.UUID, event Event) error {
	return c.publish(ctx, userTopicPrefix+userID.String(), event)
}

func (c *RedisChannel) EmitToRole(ctx context.Context, role domain.UserRole, event Event) error {
	return c.publish(ctx, roleTopicPrefix+string(role), event)
}

func (c *RedisChannel) EmitToEnquiry(ctx context.Context, enquiryID uuid.UUID, event Event) error {
	return c.publish(ctx, enquiryTopicPrefix+enquiryID.String(), event)
}

func (c *RedisChannel) publish(ctx context.Context, topic string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := c.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	c.logger.Debug("published real-time event",
		zap.String("topic", topic),
		zap.String("type", event.Type),
	)
	return nil
}

func (c *RedisChannel) Close() error {
	return c.client.Close()
}
