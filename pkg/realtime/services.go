package realtime

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/dataaggregator"
	"github.com/travigo/railcommute/pkg/dataaggregator/global"
	"github.com/travigo/railcommute/pkg/events"
	"github.com/travigo/railcommute/pkg/location"
	"github.com/travigo/railcommute/pkg/metrics"
	"github.com/travigo/railcommute/pkg/notify"
	"github.com/travigo/railcommute/pkg/preferences"
	"github.com/travigo/railcommute/pkg/realtime/board"
	"github.com/travigo/railcommute/pkg/realtime/session"
	"github.com/travigo/railcommute/pkg/redis_client"
)

// A phone reporting its position every few seconds is never this far behind
const locationMaxAge = 5 * time.Minute

type Options struct {
	RoutePath string

	// Redis backs preferences, the response cache and the notify/events queues.
	// Without it everything is kept in memory and alerts only go to the log.
	Redis bool

	// Voice lets the log sink speak, otherwise alerts fall back to vibration
	Voice bool

	// PushTarget is the user queued notifications are addressed to
	PushTarget string
}

// Services is everything a running commute tracker needs, wired together
type Services struct {
	Route       *config.Route
	Aggregator  *dataaggregator.Aggregator
	Preferences preferences.Store
	Location    *location.Reported
	Audio       *notify.DeviceAudio
	Metrics     *metrics.Collector

	Board   *board.Board
	Session *session.Session
}

func Setup(options Options) (*Services, error) {
	route, err := config.LoadRoute(options.RoutePath)
	if err != nil {
		return nil, err
	}

	services := &Services{
		Route:    route,
		Location: location.NewReported(locationMaxAge),
		Audio:    &notify.DeviceAudio{},
		Metrics:  metrics.NewCollector(route.TickInterval),
	}

	sinks := notify.Sinks{notify.LogSink{Voice: options.Voice}}
	var publisher events.Publisher = events.LogPublisher{}

	if options.Redis {
		if err := redis_client.Connect(); err != nil {
			return nil, err
		}

		services.Preferences = preferences.NewRedisStore(redis_client.Client)

		queueSink, err := notify.NewQueueSink(redis_client.QueueConnection, options.PushTarget)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, queueSink)

		queuePublisher, err := events.NewQueuePublisher(redis_client.QueueConnection)
		if err != nil {
			return nil, err
		}
		publisher = queuePublisher
	} else {
		log.Warn().Msg("Running without redis, settings will not be saved")

		services.Preferences = preferences.NewMemoryStore()
	}

	services.Aggregator = global.Setup(route)

	services.Board = board.New(route, services.Aggregator, services.Location)
	services.Board.Metrics = services.Metrics

	services.Session = session.New(route, services.Aggregator, notify.NewPolicy(sinks, services.Audio), services.Preferences)
	services.Session.Events = publisher
	services.Session.Metrics = services.Metrics

	log.Info().
		Str("a", route.StationA.String()).
		Str("b", route.StationB.String()).
		Bool("redis", options.Redis).
		Msg("Commute tracker ready")

	return services, nil
}

func (s *Services) Close() {
	s.Session.Close()

	if redis_client.Connected() {
		redis_client.Close()
	}
}
