package events

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travigo/railcommute/pkg/consumer"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Provides the events runner",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run events server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "pretty print every event",
					},
					&cli.StringFlag{
						Name:  "stats-listen",
						Usage: "address to serve queue stats on",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}
					defer redis_client.Close()

					redisConsumer := consumer.RedisConsumer{
						QueueName:       QueueName,
						NumberConsumers: 2,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewEventsBatchConsumer(c.Bool("verbose")),
						StatsAddress:    c.String("stats-listen"),
					}
					ctx, cancel := context.WithCancel(c.Context)
					defer cancel()

					if err := redisConsumer.Setup(ctx); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					return nil
				},
			},
			{
				Name:  "test-event",
				Usage: "generate a test event",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}
					defer redis_client.Close()

					publisher, err := NewQueuePublisher(redis_client.QueueConnection)
					if err != nil {
						return err
					}

					return publisher.Publish(ctdf.Event{
						Type: ctdf.EventTypeJourneyStarted,
						Body: &ctdf.JourneyEvent{
							JourneyID:          "test",
							ServiceID:          "test",
							OriginName:         "Leigh-on-Sea",
							DestinationName:    "Fenchurch Street",
							ScheduledDeparture: "08:00",
						},
					})
				},
			},
		},
	}
}
