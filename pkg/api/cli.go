package api

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/realtime"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:    "route",
						Usage:   "route yaml file, the c2c Leigh-on-Sea line when not set",
						EnvVars: []string{"RAILCOMMUTE_ROUTE"},
					},
					&cli.BoolFlag{
						Name:  "redis",
						Value: true,
						Usage: "keep settings in redis and queue alerts and events",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "bearer token required for changes",
						EnvVars: []string{"RAILCOMMUTE_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "push-target",
						Usage:   "user queued alerts are addressed to",
						EnvVars: []string{"RAILCOMMUTE_PUSH_TARGET"},
					},
				},
				Action: func(c *cli.Context) error {
					services, err := realtime.Setup(realtime.Options{
						RoutePath:  c.String("route"),
						Redis:      c.Bool("redis"),
						PushTarget: c.String("push-target"),
					})
					if err != nil {
						return err
					}
					defer services.Close()

					ctx, cancel := context.WithCancel(context.Background())
					defer cancel()

					go func() {
						if _, err := services.Board.Load(ctx); err != nil {
							log.Warn().Err(err).Msg("Initial departures load failed")
						}
					}()
					go services.Board.Run(ctx)

					log.Info().Str("listen", c.String("listen")).Msg("Starting web api")

					return SetupServer(c.String("listen"), services, c.String("api-key"))
				},
			},
		},
	}
}
