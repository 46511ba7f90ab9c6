package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/service/replay"
)

// Replay selects the inbound message deduplication backend.
type Replay struct {
	backend       string
	redisAddr     string
	redisPassword string
	redisDB       int
}

// Flags returns CLI flags for replay cache configuration
func (r *Replay) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "replay-backend",
			Usage:       "Inbound deduplication backend (memory or redis)",
			Value:       "memory",
			Sources:     cli.EnvVars("SLOTCAST_REPLAY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for the redis replay backend",
			Sources:     cli.EnvVars("SLOTCAST_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("SLOTCAST_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Sources:     cli.EnvVars("SLOTCAST_REDIS_DB"),
			Destination: &r.redisDB,
		},
	}
}

// Configure builds the replay cache for the selected backend.
func (r *Replay) Configure(ctx context.Context) (interfaces.ReplayCache, error) {
	switch r.backend {
	case "memory":
		return replay.NewMemory(), nil
	case "redis":
		if r.redisAddr == "" {
			return nil, goerr.New("redis-addr is required for the redis replay backend")
		}
		return replay.NewRedis(ctx, r.redisAddr, r.redisPassword, r.redisDB)
	default:
		return nil, goerr.New("invalid replay backend", goerr.V("backend", r.backend))
	}
}

func (r *Replay) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("redis_addr", r.redisAddr),
	)
}
