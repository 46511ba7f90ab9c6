package interfaces

import "context"

// ReplayCache remembers inbound gateway message IDs so redelivered webhooks
// (gateways retry on slow acks) do not get processed twice.
type ReplayCache interface {
	// SeenBefore atomically records the ID and reports whether it was
	// already present.
	SeenBefore(ctx context.Context, messageID string) (bool, error)
	Close() error
}
