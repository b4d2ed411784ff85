package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/paulcager/osgridref"
	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/transforms"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone             = "Europe/London"
	defaultTickInterval         = "PT30S"
	defaultBoardRefreshInterval = "PT60S"
	defaultCacheExpiration      = "PT5M"
	defaultDeparturesCount      = 15
	defaultNearStationMiles     = 1.0
)

// Route is the single line being commuted on: station A at one end, station B at the other
type Route struct {
	StationA ctdf.Station
	StationB ctdf.Station

	// Services calling at any of these are on the wrong branch and never shown
	ExcludedCrs []string

	Location *time.Location

	TickInterval         time.Duration
	BoardRefreshInterval time.Duration
	CacheExpiration      time.Duration

	DeparturesCount  int
	NearStationMiles float64

	// Display overrides applied to every departure board, eg shortening station names
	Transforms transforms.Set
}

type routeFile struct {
	Stations struct {
		A stationFile `yaml:"a"`
		B stationFile `yaml:"b"`
	} `yaml:"stations"`

	ExcludedCrs []string `yaml:"excluded_crs"`
	Timezone    string   `yaml:"timezone"`

	TickInterval         string `yaml:"tick_interval"`
	BoardRefreshInterval string `yaml:"board_refresh_interval"`
	CacheExpiration      string `yaml:"cache_expiration"`

	DeparturesCount  int     `yaml:"departures_count"`
	NearStationMiles float64 `yaml:"near_station_miles"`

	Transforms []transforms.Definition `yaml:"transforms"`
}

type stationFile struct {
	Crs       string  `yaml:"crs"`
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	// NaPTAN style UKOS grid reference, only used when latitude/longitude are missing
	Easting  string `yaml:"easting"`
	Northing string `yaml:"northing"`
}

// DefaultRoute is the c2c line between Leigh-on-Sea and London Fenchurch Street,
// skipping the Grays branch
func DefaultRoute() *Route {
	location, _ := time.LoadLocation(defaultTimezone)

	return &Route{
		StationA: ctdf.Station{
			Crs:      "LES",
			Name:     "Leigh-on-Sea",
			Location: ctdf.Coordinates{Latitude: 51.5420, Longitude: 0.6530},
		},
		StationB: ctdf.Station{
			Crs:      "FST",
			Name:     "Fenchurch Street",
			Location: ctdf.Coordinates{Latitude: 51.5118, Longitude: -0.0786},
		},
		ExcludedCrs:          []string{"GRY"},
		Location:             location,
		TickInterval:         30 * time.Second,
		BoardRefreshInterval: 60 * time.Second,
		CacheExpiration:      5 * time.Minute,
		DeparturesCount:      defaultDeparturesCount,
		NearStationMiles:     defaultNearStationMiles,
	}
}

// LoadRoute reads a route yaml file. An empty path gives DefaultRoute.
func LoadRoute(path string) (*Route, error) {
	if path == "" {
		return DefaultRoute(), nil
	}

	routeYaml, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	route, err := ParseRoute(routeYaml)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", path, err)
	}

	log.Debug().Str("path", path).Str("a", route.StationA.String()).Str("b", route.StationB.String()).Msg("Loaded route")

	return route, nil
}

func ParseRoute(routeYaml []byte) (*Route, error) {
	var file routeFile

	decoder := yaml.NewDecoder(bytes.NewReader(routeYaml))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, err
	}

	stationA, err := file.Stations.A.toStation()
	if err != nil {
		return nil, fmt.Errorf("station a: %w", err)
	}
	stationB, err := file.Stations.B.toStation()
	if err != nil {
		return nil, fmt.Errorf("station b: %w", err)
	}
	if stationA.Crs == stationB.Crs {
		return nil, fmt.Errorf("stations a and b are both %s", stationA.Crs)
	}

	timezone := file.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	route := &Route{
		StationA:         stationA,
		StationB:         stationB,
		ExcludedCrs:      file.ExcludedCrs,
		Location:         location,
		DeparturesCount:  file.DeparturesCount,
		NearStationMiles: file.NearStationMiles,
		Transforms:       file.Transforms,
	}

	if route.DeparturesCount <= 0 {
		route.DeparturesCount = defaultDeparturesCount
	}
	if route.NearStationMiles <= 0 {
		route.NearStationMiles = defaultNearStationMiles
	}

	if route.TickInterval, err = parseInterval(file.TickInterval, defaultTickInterval); err != nil {
		return nil, fmt.Errorf("tick_interval: %w", err)
	}
	if route.BoardRefreshInterval, err = parseInterval(file.BoardRefreshInterval, defaultBoardRefreshInterval); err != nil {
		return nil, fmt.Errorf("board_refresh_interval: %w", err)
	}
	if route.CacheExpiration, err = parseInterval(file.CacheExpiration, defaultCacheExpiration); err != nil {
		return nil, fmt.Errorf("cache_expiration: %w", err)
	}

	return route, nil
}

// Endpoints gives the origin and destination stations for a direction of travel
func (r *Route) Endpoints(direction ctdf.TravelDirection) (origin ctdf.Station, destination ctdf.Station) {
	if direction == ctdf.TravelDirectionToA {
		return r.StationB, r.StationA
	}

	return r.StationA, r.StationB
}

func (s stationFile) toStation() (ctdf.Station, error) {
	if s.Crs == "" || s.Name == "" {
		return ctdf.Station{}, fmt.Errorf("crs and name are required")
	}

	station := ctdf.Station{
		Crs:      s.Crs,
		Name:     s.Name,
		Location: ctdf.Coordinates{Latitude: s.Latitude, Longitude: s.Longitude},
	}

	if station.Location.IsZero() && s.Easting != "" && s.Northing != "" {
		gridRef, err := osgridref.ParseOsGridRef(fmt.Sprintf("%s,%s", s.Easting, s.Northing))
		if err != nil {
			return ctdf.Station{}, err
		}

		lat, lon := gridRef.ToLatLon()
		station.Location = ctdf.Coordinates{Latitude: lat, Longitude: lon}
	}

	return station, nil
}

// parseInterval reads an ISO-8601 duration such as PT30S
func parseInterval(value string, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}

	duration, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, err
	}

	reference := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	interval := duration.Shift(reference).Sub(reference)
	if interval <= 0 {
		return 0, fmt.Errorf("%s is not a positive interval", value)
	}

	return interval, nil
}
