package consumer

import (
	"context"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

const DefaultCleanInterval = 5 * time.Minute

// StartCleaner returns deliveries left unacked by dead consumers to their queues
// every interval until ctx is done
func StartCleaner(ctx context.Context, connection rmq.Connection, interval time.Duration) {
	cleaner := rmq.NewCleaner(connection)

	log.Info().Dur("interval", interval).Msg("Starting queue cleaner process")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clean(cleaner)
		}
	}
}

func clean(cleaner *rmq.Cleaner) int64 {
	returned, err := cleaner.Clean()
	if err != nil {
		log.Error().Err(err).Msg("Failed to clean")
		return 0
	}

	if returned != 0 {
		log.Info().Msgf("Cleaned %d records", returned)
	}

	return returned
}
