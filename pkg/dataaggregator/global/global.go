package global

import (
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/dataaggregator"
	"github.com/travigo/railcommute/pkg/dataaggregator/source/cachedresults"
	"github.com/travigo/railcommute/pkg/dataaggregator/source/nationalrail"
	"github.com/travigo/railcommute/pkg/dataaggregator/source/openmeteo"
	"github.com/travigo/railcommute/pkg/redis_client"
	"github.com/travigo/railcommute/pkg/util"
)

// Setup registers the departures and weather sources for the route. Responses are
// cached in redis when a connection has been made.
func Setup(route *config.Route) *dataaggregator.Aggregator {
	aggregator := &dataaggregator.Aggregator{}

	env := util.GetEnvironmentVariables()

	var cache *cachedresults.Cache
	if redis_client.Connected() {
		cache = &cachedresults.Cache{}
		cache.Setup(redis_client.Client, route.CacheExpiration)
	}

	aggregator.RegisterSource(nationalrail.NewSource(
		util.EnvironmentString(env, "DEPARTURES_ENDPOINT", nationalrail.DefaultGatewayEndpoint),
		route,
		cache,
	))

	aggregator.RegisterSource(openmeteo.NewSource(
		util.EnvironmentString(env, "WEATHER_ENDPOINT", openmeteo.DefaultEndpoint),
		route.Location,
		cache,
		route.CacheExpiration,
	))

	return aggregator
}
