package preferences

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
)

const (
	settingsKey     = "railcommute:preferences:journey_settings"
	changedChannel  = "railcommute:preferences:changed"
	alertPreference = "alert_preference"
	twoMinuteAlert  = "two_min_alert_enabled"
)

// RedisStore keeps settings in a hash and announces changes on a pub/sub channel so
// every running process sees edits made by any other
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

// Get fills in defaults for missing fields and ignores values it doesn't understand
func (s *RedisStore) Get(ctx context.Context) (ctdf.JourneyAlertSettings, error) {
	settings := ctdf.DefaultJourneyAlertSettings()

	values, err := s.Client.HGetAll(ctx, settingsKey).Result()
	if err != nil {
		return settings, err
	}

	if preference, exists := values[alertPreference]; exists {
		settings.AlertPreference = ctdf.ParseAlertPreference(preference)
	}

	if enabled, exists := values[twoMinuteAlert]; exists {
		if parsed, err := strconv.ParseBool(enabled); err == nil {
			settings.TwoMinuteAlertEnabled = parsed
		}
	}

	return settings, nil
}

func (s *RedisStore) SetAlertPreference(ctx context.Context, preference ctdf.AlertPreference) error {
	return s.set(ctx, alertPreference, string(ctdf.ParseAlertPreference(string(preference))))
}

func (s *RedisStore) SetTwoMinuteAlertEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, twoMinuteAlert, strconv.FormatBool(enabled))
}

func (s *RedisStore) set(ctx context.Context, field string, value string) error {
	if err := s.Client.HSet(ctx, settingsKey, field, value).Err(); err != nil {
		return err
	}

	return s.Client.Publish(ctx, changedChannel, field).Err()
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan ctdf.JourneyAlertSettings, func()) {
	ctx, cancelContext := context.WithCancel(ctx)
	ch := make(chan ctdf.JourneyAlertSettings, 1)

	pubsub := s.Client.Subscribe(ctx, changedChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to subscribe to preference changes")
	}

	settings, err := s.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read preferences")
	}
	ch <- settings

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(ch)

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}

				settings, err := s.Get(ctx)
				if err != nil {
					log.Error().Err(err).Msg("Failed to read preferences")
					continue
				}
				offer(ch, settings)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelContext()
			if err := pubsub.Close(); err != nil {
				log.Debug().Err(err).Msg("Closing preferences subscription")
			}
			wg.Wait()
		})
	}

	return ch, cancel
}
