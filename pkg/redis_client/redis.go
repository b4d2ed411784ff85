package redis_client

import (
	"context"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "railcommute"

func Connect() error {
	env := util.GetEnvironmentVariables()

	address := util.EnvironmentString(env, "REDIS_ADDRESS", defaultConnectionAddress)
	password := util.EnvironmentString(env, "REDIS_PASSWORD", defaultConnectionPassword)
	database, err := util.EnvironmentInt(env, "REDIS_DATABASE", defaultDatabase)
	if err != nil {
		return err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	// Redis usually comes up alongside us so give it a little while
	retryBackoff := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	err = backoff.Retry(func() error {
		err := client.Ping(context.Background()).Err()
		if err != nil {
			log.Warn().Err(err).Str("address", address).Msg("Redis not ready")
		}
		return err
	}, retryBackoff)
	if err != nil {
		return err
	}

	return Setup(client)
}

// Setup uses an existing client, opening the queue connection on top of it
func Setup(client *redis.Client) error {
	queueConnection, err := rmq.OpenConnectionWithRedisClient(queueConnectionTag, client, nil)
	if err != nil {
		return err
	}

	Client = client
	QueueConnection = queueConnection

	log.Info().Str("address", client.Options().Addr).Msg("Redis client setup")

	return nil
}

// Close stops any queue consumers and closes the client
func Close() {
	if QueueConnection != nil {
		<-QueueConnection.StopAllConsuming()
	}

	if Client != nil {
		if err := Client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}

	Client = nil
	QueueConnection = nil
}

// Connected is true once Connect or Setup has succeeded
func Connected() bool {
	return Client != nil
}

const pingTimeout = 2 * time.Second

func Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return Client.Ping(ctx).Err()
}
