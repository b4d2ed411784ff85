package openmeteo

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/dataaggregator/query"
	"github.com/travigo/railcommute/pkg/dataaggregator/source"
	"github.com/travigo/railcommute/pkg/dataaggregator/source/cachedresults"
)

const DefaultEndpoint = "https://api.open-meteo.com"

const requestTimeout = 15 * time.Second

// Source reads hourly forecasts from Open-Meteo
type Source struct {
	Endpoint   string
	HTTPClient *http.Client

	// Zone the forecast hours are requested in
	Timezone string

	Cache           *cachedresults.Cache
	CacheExpiration time.Duration
}

func NewSource(endpoint string, location *time.Location, cache *cachedresults.Cache, cacheExpiration time.Duration) Source {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timezone := "Europe/London"
	if location != nil && location.String() != "Local" {
		timezone = location.String()
	}

	return Source{
		Endpoint:        endpoint,
		HTTPClient:      &http.Client{Timeout: requestTimeout},
		Timezone:        timezone,
		Cache:           cache,
		CacheExpiration: cacheExpiration,
	}
}

func (s Source) GetName() string {
	return "Open-Meteo"
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(ctdf.ArrivalWeather{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (interface{}, error) {
	switch q := q.(type) {
	case query.ArrivalWeather:
		return s.ArrivalWeatherQuery(ctx, q)
	default:
		return nil, source.UnsupportedSourceError
	}
}
