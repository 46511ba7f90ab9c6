package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

var (
	// ErrGatewayUnconfigured means no messaging backend is set up.
	ErrGatewayUnconfigured = goerr.New("messaging gateway not configured")
	// ErrGatewayRejected means the gateway refused the outbound message.
	ErrGatewayRejected = goerr.New("messaging gateway rejected the message")
)

// Gateway sends outbound messages to contacts. Send returns a
// backend-specific delivery handle on success.
type Gateway interface {
	Send(ctx context.Context, to types.Address, body string, mediaURLs []string) (string, error)
}

// InboundMessage is what the gateway delivers to the webhook entry point.
type InboundMessage struct {
	From      types.Address
	Body      string
	MessageID string
}
