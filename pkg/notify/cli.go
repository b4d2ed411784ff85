package notify

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travigo/railcommute/pkg/consumer"
	"github.com/travigo/railcommute/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Provides the notification system",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "deliver queued arrival alerts as push notifications",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "stats-listen",
						Usage: "address to serve queue stats on",
						Value: ":3333",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}
					defer redis_client.Close()

					pushSink, err := NewPushSink(context.Background())
					if err != nil {
						return err
					}

					redisConsumer := consumer.RedisConsumer{
						QueueName:       QueueName,
						NumberConsumers: 2,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewNotifyBatchConsumer(pushSink),
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
		},
	}
}
