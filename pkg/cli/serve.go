package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/slotcast-dev/slotcast/pkg/cli/config"
	httpctrl "github.com/slotcast-dev/slotcast/pkg/controller/http"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/service/directory"
	"github.com/slotcast-dev/slotcast/pkg/service/schedule"
	"github.com/slotcast-dev/slotcast/pkg/usecase"
	"github.com/slotcast-dev/slotcast/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var appCfg config.App
	var storeCfg config.Store
	var gatewayCfg config.Gateway
	var replayCfg config.Replay
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SLOTCAST_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL for webhook signature validation (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("SLOTCAST_BASE_URL"),
			Destination: &baseURL,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, gatewayCfg.Flags()...)
	flags = append(flags, replayCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			stores, err := storeCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure record store backend")
			}

			gw, err := gatewayCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure messaging gateway")
			}
			if gw == nil {
				logging.Default().Warn("Messaging gateway not configured, broadcast and reply delivery disabled")
			}

			replayCache, err := replayCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure replay cache")
			}
			defer func() {
				if err := replayCache.Close(); err != nil {
					logging.Default().Error("failed to close replay cache", "error", err.Error())
				}
			}()

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack notifier")
			}
			if notifier != nil {
				logging.Default().Info("Slack operator notifications enabled")
			}

			parser := schedule.NewParser(appCfg.Location())
			planner := schedule.NewPlanner(parser, appCfg.SlotDuration())
			builder := directory.NewBuilder(appCfg.CountryCode(), appCfg.ChannelPrefix())

			ucOpts := []usecase.Option{
				usecase.WithReplayCache(replayCache),
			}
			if gw != nil {
				ucOpts = append(ucOpts, usecase.WithGateway(gw))
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
			}

			registry := model.NewWorkspaceRegistry()
			uc := usecase.New(registry, stores, builder, planner, ucOpts...)
			defer func() {
				for _, ws := range uc.ListWorkspaces(ctx) {
					if err := uc.DeleteWorkspace(ctx, ws.ID); err != nil {
						logging.Default().Error("failed to close workspace store",
							"workspace_id", ws.ID, "error", err.Error())
					}
				}
			}()

			// Pre-create workspaces from the config file
			for _, def := range appCfg.Workspaces() {
				ws, err := uc.CreateWorkspace(ctx, types.WorkspaceID(def.ID), def.Name, def.DirectorySource, def.Templates())
				if err != nil {
					return goerr.Wrap(err, "failed to create configured workspace",
						goerr.V("workspace_id", def.ID))
				}
				logging.Default().Info("Workspace loaded",
					"workspace_id", ws.ID,
					"contacts", len(ws.Directory().Contacts()),
				)
			}

			httpOpts := []httpctrl.Options{}
			if gatewayCfg.Configured() && baseURL != "" {
				httpOpts = append(httpOpts, httpctrl.WithGatewaySignature(gatewayCfg.AuthToken(), baseURL))
				logging.Default().Info("Webhook signature validation enabled")
			} else {
				logging.Default().Warn("Webhook signature validation disabled, set gateway credentials and --base-url to enable")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "store", &storeCfg, "app", &appCfg)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
