package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/slotcast-dev/slotcast/pkg/domain/model"
)

// WorkspaceDef is one pre-configured workspace from the TOML config file.
type WorkspaceDef struct {
	ID              string `toml:"id"`
	Name            string `toml:"name"`
	DirectorySource string `toml:"directory_source"`
	Broadcast       string `toml:"broadcast_template"`
	Confirm         string `toml:"confirm_template"`
}

// Templates converts the TOML template fields; blanks fall back to defaults
// at workspace creation.
func (w WorkspaceDef) Templates() model.MessageTemplates {
	return model.MessageTemplates{Broadcast: w.Broadcast, Confirm: w.Confirm}
}

type appFile struct {
	Workspaces []WorkspaceDef `toml:"workspace"`
}

// App holds the domain-level settings: timezone, contact address shaping,
// slot sizing and the optional workspace definition file.
type App struct {
	configPath    string
	timezone      string
	countryCode   string
	channelPrefix string
	slotMinutes   int

	location   *time.Location
	workspaces []WorkspaceDef
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML file with workspace definitions",
			Sources:     cli.EnvVars("SLOTCAST_CONFIG"),
			Destination: &a.configPath,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "IANA timezone for availability text parsing",
			Value:       "Asia/Singapore",
			Sources:     cli.EnvVars("SLOTCAST_TIMEZONE"),
			Destination: &a.timezone,
		},
		&cli.StringFlag{
			Name:        "country-code",
			Usage:       "Default country code prefixed to bare contact numbers",
			Value:       "65",
			Sources:     cli.EnvVars("SLOTCAST_COUNTRY_CODE"),
			Destination: &a.countryCode,
		},
		&cli.StringFlag{
			Name:        "channel-prefix",
			Usage:       "Messaging channel prefix for contact addresses",
			Value:       "whatsapp:",
			Sources:     cli.EnvVars("SLOTCAST_CHANNEL_PREFIX"),
			Destination: &a.channelPrefix,
		},
		&cli.IntFlag{
			Name:        "slot-minutes",
			Usage:       "Slot duration in minutes",
			Value:       60,
			Sources:     cli.EnvVars("SLOTCAST_SLOT_MINUTES"),
			Destination: &a.slotMinutes,
		},
	}
}

// Configure resolves the timezone and loads the workspace file when given.
func (a *App) Configure() error {
	loc, err := time.LoadLocation(a.timezone)
	if err != nil {
		return goerr.Wrap(err, "invalid timezone", goerr.V("timezone", a.timezone))
	}
	a.location = loc

	if a.slotMinutes <= 0 {
		return goerr.New("slot-minutes must be positive", goerr.V("slot_minutes", a.slotMinutes))
	}

	if a.configPath == "" {
		return nil
	}

	data, err := os.ReadFile(a.configPath) // #nosec G304 - operator-provided path
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", a.configPath))
	}
	var file appFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", a.configPath))
	}
	for _, ws := range file.Workspaces {
		if ws.DirectorySource == "" {
			return goerr.New("workspace definition needs directory_source",
				goerr.V("workspace_id", ws.ID))
		}
	}
	a.workspaces = file.Workspaces
	return nil
}

// Location returns the resolved timezone. Valid after Configure.
func (a *App) Location() *time.Location { return a.location }

// CountryCode returns the default country code for bare numbers.
func (a *App) CountryCode() string { return a.countryCode }

// ChannelPrefix returns the messaging channel prefix.
func (a *App) ChannelPrefix() string { return a.channelPrefix }

// SlotDuration returns the configured slot length.
func (a *App) SlotDuration() time.Duration {
	return time.Duration(a.slotMinutes) * time.Minute
}

// Workspaces returns the pre-configured workspace definitions.
func (a *App) Workspaces() []WorkspaceDef { return a.workspaces }

func (a *App) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("timezone", a.timezone),
		slog.String("country_code", a.countryCode),
		slog.String("channel_prefix", a.channelPrefix),
		slog.Int("slot_minutes", a.slotMinutes),
		slog.Int("workspaces", len(a.workspaces)),
	)
}
