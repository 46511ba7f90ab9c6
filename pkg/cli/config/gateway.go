package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/service/gateway"
)

// Gateway holds Twilio credentials for the outbound messaging channel.
type Gateway struct {
	accountSID string
	authToken  string
	from       string
}

// Flags returns CLI flags for messaging gateway configuration
func (g *Gateway) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "twilio-account-sid",
			Usage:       "Twilio account SID",
			Sources:     cli.EnvVars("SLOTCAST_TWILIO_ACCOUNT_SID"),
			Destination: &g.accountSID,
		},
		&cli.StringFlag{
			Name:        "twilio-auth-token",
			Usage:       "Twilio auth token",
			Sources:     cli.EnvVars("SLOTCAST_TWILIO_AUTH_TOKEN"),
			Destination: &g.authToken,
		},
		&cli.StringFlag{
			Name:        "twilio-from",
			Usage:       "Sender address including channel prefix, e.g. whatsapp:+14155238886",
			Sources:     cli.EnvVars("SLOTCAST_TWILIO_FROM"),
			Destination: &g.from,
		},
	}
}

// Configured reports whether all gateway credentials are present.
func (g *Gateway) Configured() bool {
	return g.accountSID != "" && g.authToken != "" && g.from != ""
}

// AuthToken exposes the token for webhook signature validation.
func (g *Gateway) AuthToken() string { return g.authToken }

// Configure builds the Twilio gateway, or returns nil when not configured so
// the server can run in dry mode.
func (g *Gateway) Configure() (interfaces.Gateway, error) {
	if !g.Configured() {
		return nil, nil
	}
	return gateway.NewTwilio(g.accountSID, g.authToken, g.from)
}

func (g *Gateway) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", g.Configured()),
		slog.String("from", g.from),
	)
}
