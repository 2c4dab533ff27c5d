package realtime_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupChannel(t *testing.T) (*realtime.RedisChannel, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	subscriber := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { subscriber.Close() })

	return realtime.NewRedisChannelFromClient(client, zap.NewNop()), subscriber
}

func receive(t *testing.T, ch <-chan *redis.Message) *redis.Message {
	t.Helper()

	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
		return nil
	}
}

func TestRedisChannel_EmitToUser(t *testing.T) {
	channel, subscriber := setupChannel(t)
	ctx := context.Background()
	userID := uuid.New()
	enquiryID := uuid.New()

	sub := subscriber.Subscribe(ctx, "rt:user:"+userID.String())
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = channel.EmitToUser(ctx, userID, realtime.Event{
		Type:       string(domain.NotificationTypeAssignment),
		Title:      "Enquiry assigned",
		Message:    "ENQ-1001 assigned to you",
		EnquiryID:  &enquiryID,
		EnquiryNum: "ENQ-1001",
	})
	require.NoError(t, err)

	msg := receive(t, sub.Channel())
	var event realtime.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, string(domain.NotificationTypeAssignment), event.Type)
	assert.Equal(t, "Enquiry assigned", event.Title)
	assert.Equal(t, "ENQ-1001", event.EnquiryNum)
	require.NotNil(t, event.EnquiryID)
	assert.Equal(t, enquiryID, *event.EnquiryID)
}

func TestRedisChannel_EmitToRole(t *testing.T) {
	channel, subscriber := setupChannel(t)
	ctx := context.Background()

	sub := subscriber.Subscribe(ctx, "rt:role:"+string(domain.RoleProduction))
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = channel.EmitToRole(ctx, domain.RoleProduction, realtime.Event{
		Type:  string(domain.NotificationTypeStatusChange),
		Title: "Order confirmed",
	})
	require.NoError(t, err)

	msg := receive(t, sub.Channel())
	var event realtime.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, "Order confirmed", event.Title)
}

func TestRedisChannel_EmitToEnquiry(t *testing.T) {
	channel, subscriber := setupChannel(t)
	ctx := context.Background()
	enquiryID := uuid.New()

	sub := subscriber.Subscribe(ctx, "rt:enquiry:"+enquiryID.String())
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = channel.EmitToEnquiry(ctx, enquiryID, realtime.Event{
		Type:    string(domain.NotificationTypeStatusChange),
		Message: "moved to hotdip",
	})
	require.NoError(t, err)

	msg := receive(t, sub.Channel())
	var event realtime.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, "moved to hotdip", event.Message)
}
