package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
)

// Event is the payload published on a real-time topic
type Event struct {
	Type       string         `json:"type"`
	Title      string         `json:"title,omitempty"`
	Message    string         `json:"message,omitempty"`
	EnquiryID  *uuid.UUID     `json:"enquiryId,omitempty"`
	EnquiryNum string         `json:"enquiryNum,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Channel delivers real-time events to connected clients. Delivery is
// best-effort: errors are returned for logging but never block the caller's
// workflow.
type Channel interface {
	// EmitToUser publishes an event on the user's personal topic
	EmitToUser(ctx context.Context, userID uuid.UUID, event Event) error

	// EmitToRole publishes an event on a role-wide topic
	EmitToRole(ctx context.Context, role domain.UserRole, event Event) error

	// EmitToEnquiry publishes an event on an enquiry's topic
	EmitToEnquiry(ctx context.Context, enquiryID uuid.UUID, event Event) error

	// Close releases the underlying connection
	Close() error
}

// NoopChannel discards all events. Used when Redis is disabled.
type NoopChannel struct{}

func NewNoopChannel() *NoopChannel {
	return &NoopChannel{}
}

func (n *NoopChannel) EmitToUser(ctx context.Context, userID uuid.UUID, event Event) error {
	return nil
}

func (n *NoopChannel) EmitToRole(ctx context.Context, role domain.UserRole, event Event) error {
	return nil
}

func (n *NoopChannel) EmitToEnquiry(ctx context.Context, enquiryID uuid.UUID, event Event) error {
	return nil
}

func (n *NoopChannel) Close() error {
	return nil
}
