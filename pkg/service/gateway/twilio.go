// Package gateway provides messaging gateway backends for outbound delivery.
package gateway

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

const (
	// DefaultSendRate paces outbound messages to stay under carrier limits.
	DefaultSendRate = rate.Limit(10)
	// DefaultSendBurst is the token bucket burst for outbound sends.
	DefaultSendBurst = 5
)

// twilioGateway sends messages through the Twilio Messages API.
type twilioGateway struct {
	client  *twilio.RestClient
	from    string
	limiter *rate.Limiter
}

// Option is a functional option for gateway configuration
type Option func(*twilioGateway)

// WithSendRate overrides the outbound pacing.
func WithSendRate(r rate.Limit, burst int) Option {
	return func(g *twilioGateway) {
		g.limiter = rate.NewLimiter(r, burst)
	}
}

// NewTwilio creates a Twilio-backed gateway. The from address carries the
// channel prefix of the workspace contacts (e.g. "whatsapp:+14155238886").
func NewTwilio(accountSID, authToken, from string) (interfaces.Gateway, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, goerr.Wrap(interfaces.ErrGatewayUnconfigured, "twilio credentials are required")
	}

	return &twilioGateway{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:    from,
		limiter: rate.NewLimiter(DefaultSendRate, DefaultSendBurst),
	}, nil
}

// Send delivers one message, pacing through the token bucket first.
func (g *twilioGateway) Send(ctx context.Context, to types.Address, body string, mediaURLs []string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", goerr.Wrap(err, "send cancelled while waiting for rate limiter")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to.String())
	params.SetFrom(g.from)
	params.SetBody(body)
	if len(mediaURLs) > 0 {
		params.SetMediaUrl(mediaURLs)
	}

	resp, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return "", goerr.Wrap(interfaces.ErrGatewayRejected, err.Error(),
			goerr.V("to", to))
	}
	if resp.Sid == nil {
		return "", goerr.Wrap(interfaces.ErrGatewayRejected, "no message SID returned",
			goerr.V("to", to))
	}
	return *resp.Sid, nil
}
