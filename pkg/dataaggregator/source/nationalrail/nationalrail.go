package nationalrail

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/dataaggregator/query"
	"github.com/travigo/railcommute/pkg/dataaggregator/source"
	"github.com/travigo/railcommute/pkg/dataaggregator/source/cachedresults"
)

const DefaultGatewayEndpoint = "https://national-rail-api.davwheat.dev"

const requestTimeout = 15 * time.Second

// Source reads departure boards from a Huxley2 gateway in front of National Rail Darwin
type Source struct {
	GatewayEndpoint string
	HTTPClient      *http.Client

	Classifier Classifier

	Cache           *cachedresults.Cache
	CacheExpiration time.Duration
}

func NewSource(gatewayEndpoint string, route *config.Route, cache *cachedresults.Cache) Source {
	if gatewayEndpoint == "" {
		gatewayEndpoint = DefaultGatewayEndpoint
	}

	return Source{
		GatewayEndpoint: gatewayEndpoint,
		HTTPClient:      &http.Client{Timeout: requestTimeout},
		Classifier:      Classifier{Route: route},
		Cache:           cache,
		// Short enough that the 60s board refresh always sees a fresh board
		CacheExpiration: 20 * time.Second,
	}
}

func (s Source) GetName() string {
	return "GB National Rail"
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(ctdf.TrainData{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (interface{}, error) {
	switch q := q.(type) {
	case query.Departures:
		return s.DeparturesQuery(ctx, q)
	default:
		return nil, source.UnsupportedSourceError
	}
}
