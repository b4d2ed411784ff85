package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns its own registry so tests can create as many as they like
type Collector struct {
	reg *prometheus.Registry

	ActiveJourneys    prometheus.Gauge
	JourneysStarted   prometheus.Counter
	JourneysCompleted prometheus.Counter
	JourneysEnded     prometheus.Counter

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram

	Alerts *prometheus.CounterVec // action label: suppressed|voice|vibrate

	ProviderRequests *prometheus.CounterVec // provider, result labels
	ProviderDuration *prometheus.HistogramVec

	StaleResults *prometheus.CounterVec // kind label: weather|departures

	TickInterval prometheus.Gauge // seconds
}

func NewCollector(tickInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveJourneys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railcommute_active_journeys",
			Help: "1 while a journey is being tracked, 0 otherwise.",
		}),
		JourneysStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railcommute_journeys_started_total",
			Help: "Total journeys started.",
		}),
		JourneysCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railcommute_journeys_completed_total",
			Help: "Total journeys that reached their destination.",
		}),
		JourneysEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railcommute_journeys_ended_total",
			Help: "Total journeys ended by the traveller.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railcommute_ticks_total",
			Help: "Total progress recalculations.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "railcommute_tick_duration_seconds",
			Help:    "Duration of a progress recalculation including the alert check.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railcommute_arrival_alerts_total",
			Help: "Arrival alerts by how they were delivered.",
		}, []string{"action"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railcommute_provider_requests_total",
			Help: "Departure and weather lookups by provider and result.",
		}, []string{"provider", "result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "railcommute_provider_duration_seconds",
			Help:    "Duration of departure and weather lookups.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"provider"}),
		StaleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railcommute_stale_results_total",
			Help: "Lookup results discarded because the session had moved on.",
		}, []string{"kind"}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railcommute_tick_interval_seconds",
			Help: "Progress recalculation interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.ActiveJourneys, c.JourneysStarted, c.JourneysCompleted, c.JourneysEnded,
		c.Ticks, c.TickDuration, c.Alerts,
		c.ProviderRequests, c.ProviderDuration, c.StaleResults,
		c.TickInterval,
	)

	c.TickInterval.Set(tickInterval.Seconds())

	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// ObserveProvider records one lookup. Safe on a nil Collector.
func (c *Collector) ObserveProvider(provider string, started time.Time, err error) {
	if c == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	c.ProviderRequests.WithLabelValues(provider, result).Inc()
	c.ProviderDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

func (c *Collector) ObserveTick(started time.Time) {
	if c == nil {
		return
	}

	c.Ticks.Inc()
	c.TickDuration.Observe(time.Since(started).Seconds())
}

func (c *Collector) Alert(action string) {
	if c == nil {
		return
	}

	c.Alerts.WithLabelValues(action).Inc()
}

func (c *Collector) Stale(kind string) {
	if c == nil {
		return
	}

	c.StaleResults.WithLabelValues(kind).Inc()
}

func (c *Collector) JourneyStarted() {
	if c == nil {
		return
	}

	c.JourneysStarted.Inc()
	c.ActiveJourneys.Set(1)
}

func (c *Collector) JourneyCompleted() {
	if c == nil {
		return
	}

	c.JourneysCompleted.Inc()
	c.ActiveJourneys.Set(0)
}

func (c *Collector) JourneyEnded() {
	if c == nil {
		return
	}

	c.JourneysEnded.Inc()
	c.ActiveJourneys.Set(0)
}
