package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/slotcast-dev/slotcast/pkg/service/opsnotify"
)

// Slack holds credentials for the operator notification channel.
type Slack struct {
	token   string
	channel string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token for operator notifications",
			Sources:     cli.EnvVars("SLOTCAST_SLACK_BOT_TOKEN"),
			Destination: &s.token,
		},
		&cli.StringFlag{
			Name:        "slack-ops-channel",
			Usage:       "Slack channel for broadcast summaries and warnings",
			Sources:     cli.EnvVars("SLOTCAST_SLACK_OPS_CHANNEL"),
			Destination: &s.channel,
		},
	}
}

// Configure builds the notifier, or returns nil when not configured.
func (s *Slack) Configure() (*opsnotify.Notifier, error) {
	if s.token == "" || s.channel == "" {
		return nil, nil
	}
	return opsnotify.New(s.token, s.channel)
}

func (s *Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", s.token != "" && s.channel != ""),
		slog.String("channel", s.channel),
	)
}
