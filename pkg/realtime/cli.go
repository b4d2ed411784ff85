package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/realtime/board"
	"github.com/travigo/railcommute/pkg/realtime/progress"
	"github.com/travigo/railcommute/pkg/realtime/session"
	"github.com/travigo/railcommute/pkg/util"
	"github.com/urfave/cli/v2"
)

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "route",
		Usage:   "route yaml file, the c2c Leigh-on-Sea line when not set",
		EnvVars: []string{"RAILCOMMUTE_ROUTE"},
	},
	&cli.BoolFlag{
		Name:  "redis",
		Usage: "keep settings in redis and queue alerts and events",
	},
	&cli.Float64Flag{
		Name:  "latitude",
		Usage: "current position, used to pick the direction of travel",
	},
	&cli.Float64Flag{
		Name:  "longitude",
		Usage: "current position, used to pick the direction of travel",
	},
	&cli.StringFlag{
		Name:  "direction",
		Usage: "TO_A or TO_B, detected from location when not set",
	},
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Departures and journey tracking from the terminal",
		Subcommands: []*cli.Command{
			{
				Name:  "departures",
				Usage: "show the departure board",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: "table",
						Usage: "table, csv or json",
					},
				}, commonFlags...),
				Action: func(c *cli.Context) error {
					services, err := setupFromContext(c, false)
					if err != nil {
						return err
					}
					defer services.Close()

					snapshot, err := loadBoard(c, services)
					if err != nil {
						return err
					}

					return writeDepartures(os.Stdout, c.String("format"), snapshot)
				},
			},
			{
				Name:  "track",
				Usage: "track a journey until it arrives",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "service",
						Usage: "service id from the departure board, the first listed departure when not set",
					},
					&cli.BoolFlag{
						Name:  "voice",
						Usage: "speak alerts rather than vibrate",
					},
					&cli.BoolFlag{
						Name:  "wireless-audio",
						Usage: "pretend a wireless audio output is connected",
					},
				}, commonFlags...),
				Action: func(c *cli.Context) error {
					services, err := setupFromContext(c, c.Bool("voice"))
					if err != nil {
						return err
					}
					defer services.Close()

					services.Audio.SetWirelessAudioConnected(c.Bool("wireless-audio"))

					snapshot, err := loadBoard(c, services)
					if err != nil {
						return err
					}

					serviceID := c.String("service")
					if serviceID == "" {
						if snapshot.Data == nil || len(snapshot.Data.Departures) == 0 {
							return errors.New("no departures to track")
						}
						serviceID = snapshot.Data.Departures[0].ServiceID
					}

					departure, direction, err := services.Board.Departure(serviceID)
					if err != nil {
						return err
					}

					if _, err := services.Session.Start(c.Context, departure, direction); err != nil {
						return err
					}

					return followJourney(c.Context, services.Session)
				},
			},
			{
				Name:  "settings",
				Usage: "show or change the arrival alert settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "alert-preference",
						Usage: "AUDIO_IF_BLUETOOTH or SILENT_VIBRATE",
					},
					&cli.StringFlag{
						Name:  "two-minute-alert",
						Usage: "on or off",
					},
				},
				Action: func(c *cli.Context) error {
					services, err := Setup(Options{Redis: true})
					if err != nil {
						return err
					}
					defer services.Close()

					store := services.Preferences

					if c.IsSet("alert-preference") {
						preference := ctdf.AlertPreference(c.String("alert-preference"))
						if !preference.Valid() {
							return fmt.Errorf("unknown alert preference %q", preference)
						}
						if err := store.SetAlertPreference(c.Context, preference); err != nil {
							return err
						}
					}

					if c.IsSet("two-minute-alert") {
						switch strings.ToLower(c.String("two-minute-alert")) {
						case "on":
							err = store.SetTwoMinuteAlertEnabled(c.Context, true)
						case "off":
							err = store.SetTwoMinuteAlertEnabled(c.Context, false)
						default:
							err = errors.New("two-minute-alert must be on or off")
						}
						if err != nil {
							return err
						}
					}

					settings, err := store.Get(c.Context)
					if err != nil {
						return err
					}

					fmt.Printf("Two minute alert: %t\nAlert preference: %s\n", settings.TwoMinuteAlertEnabled, settings.AlertPreference)

					return nil
				},
			},
		},
	}
}

func setupFromContext(c *cli.Context, voice bool) (*Services, error) {
	services, err := Setup(Options{
		RoutePath:  c.String("route"),
		Redis:      c.Bool("redis"),
		Voice:      voice,
		PushTarget: util.EnvironmentString(util.GetEnvironmentVariables(), "PUSH_TARGET", ""),
	})
	if err != nil {
		return nil, err
	}

	if c.IsSet("latitude") && c.IsSet("longitude") {
		services.Location.Report(ctdf.Coordinates{
			Latitude:  c.Float64("latitude"),
			Longitude: c.Float64("longitude"),
		})
	}

	return services, nil
}

func loadBoard(c *cli.Context, services *Services) (board.Snapshot, error) {
	snapshot, err := services.Board.Load(c.Context)
	if err != nil {
		return snapshot, err
	}

	if c.IsSet("direction") {
		direction := ctdf.TravelDirection(strings.ToUpper(c.String("direction")))
		if !direction.Valid() {
			return snapshot, fmt.Errorf("unknown direction %q", c.String("direction"))
		}

		if direction != snapshot.Direction {
			return services.Board.ToggleDirection(c.Context)
		}
	}

	return snapshot, nil
}

func writeDepartures(writer io.Writer, format string, snapshot board.Snapshot) error {
	if snapshot.Data == nil {
		return errors.New("no departures loaded")
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snapshot.Data)
	case "csv":
		return gocsv.Marshal(snapshot.Data.Departures, writer)
	case "table":
		fmt.Fprintf(writer, "%s to %s\n\n", snapshot.Data.FromStation, snapshot.Data.ToStation)

		table := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(table, "SERVICE\tDEPARTS\tEXPECTED\tPLATFORM\tJOURNEY\tSTATUS")
		for _, departure := range snapshot.Data.Departures {
			journeyTime := "-"
			if departure.JourneyTimeMinutes != nil {
				journeyTime = fmt.Sprintf("%d min", *departure.JourneyTimeMinutes)
			}

			status := string(departure.Status)
			if departure.DelayMinutes > 0 {
				status = fmt.Sprintf("%s +%d", status, departure.DelayMinutes)
			}

			fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\n",
				departure.ServiceID,
				departure.ScheduledDeparture,
				departure.EstimatedDeparture,
				departure.Platform,
				journeyTime,
				status,
			)
		}
		if err := table.Flush(); err != nil {
			return err
		}

		for _, disruption := range snapshot.Data.Disruptions {
			fmt.Fprintf(writer, "\n[%s] %s\n", disruption.Severity, disruption.Message)
		}

		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// followJourney logs every change to the journey until it completes or we're interrupted,
// in which case the journey is ended
func followJourney(ctx context.Context, journeySession *session.Session) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	var lastWeather string

	for {
		select {
		case <-signals:
			return journeySession.End()
		case <-ctx.Done():
			return journeySession.End()
		case <-journeySession.Updates():
		}

		state := journeySession.State()
		switch state := state.(type) {
		case session.Active:
			logProgress(state.Progress)
		case session.Completed:
			logProgress(state.Progress)
			log.Info().Str("destination", state.Journey.DestinationName).Msg("Arrived")
			return nil
		}

		if weather, ok := journeySession.Weather().(session.WeatherSuccess); ok && weather.Weather.Description != lastWeather {
			lastWeather = weather.Weather.Description
			log.Info().
				Str("description", weather.Weather.Description).
				Int("precipitation_probability", weather.Weather.PrecipitationProbability).
				Bool("umbrella", weather.Weather.ShouldBringUmbrella).
				Msg("Weather on arrival")
		}
	}
}

func logProgress(p ctdf.JourneyProgress) {
	event := log.Info().
		Int("stop", p.CurrentStopIndex).
		Int("stops_remaining", p.StopsRemaining).
		Float64("fraction", progress.Fraction(p)).
		Int("delay", p.DelayMinutes)

	if p.MinutesToArrival != nil {
		event = event.Int("minutes", *p.MinutesToArrival)
	}
	if p.NextStopName != nil {
		event = event.Str("next", *p.NextStopName)
	}

	event.Msg("Journey progress")
}
