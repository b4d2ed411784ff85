package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/api"
	"github.com/travigo/railcommute/pkg/events"
	"github.com/travigo/railcommute/pkg/notify"
	"github.com/travigo/railcommute/pkg/realtime"
	"github.com/travigo/railcommute/pkg/util"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// Local development keeps its settings in .env, deployments use the real environment
	_ = godotenv.Load()

	env := util.GetEnvironmentVariables()

	if util.EnvironmentString(env, "LOG_FORMAT", "") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if util.EnvironmentFlag(env, "DEBUG") {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "railcommute",
		Description: "Departure board, journey tracking and arrival alerts for a single rail commute",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			realtime.RegisterCLI(),
			notify.RegisterCLI(),
			events.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
