package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/dataaggregator/query"
	"github.com/travigo/railcommute/pkg/util"
)

var ErrNoForecastForArrival = errors.New("Weather data not available for arrival time")

const hourlyFields = "precipitation_probability,precipitation,weather_code"

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`

	Hourly *hourlyForecast `json:"hourly"`
}

type hourlyForecast struct {
	Time                     []string  `json:"time"`
	PrecipitationProbability []int     `json:"precipitation_probability"`
	Precipitation            []float64 `json:"precipitation"`
	WeatherCode              []int     `json:"weather_code"`
}

func (s Source) ArrivalWeatherQuery(ctx context.Context, q query.ArrivalWeather) (*ctdf.ArrivalWeather, error) {
	arrivalMinutes, ok := util.ParseClock(q.ArrivalTime)
	if !ok {
		return nil, ErrNoForecastForArrival
	}

	parameters := url.Values{}
	parameters.Set("latitude", fmt.Sprint(q.Station.Location.Latitude))
	parameters.Set("longitude", fmt.Sprint(q.Station.Location.Longitude))
	parameters.Set("hourly", hourlyFields)
	parameters.Set("timezone", s.Timezone)
	parameters.Set("forecast_days", "1")

	body, err := s.forecastLookup(ctx, fmt.Sprintf("v1/forecast?%s", parameters.Encode()))
	if err != nil {
		return nil, err
	}

	var response forecastResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	weather, ok := response.Hourly.atHour(q.Date.Format("2006-01-02"), arrivalMinutes/60)
	if !ok {
		return nil, ErrNoForecastForArrival
	}

	log.Debug().
		Str("station", q.Station.Crs).
		Str("arrival", q.ArrivalTime).
		Int("probability", weather.PrecipitationProbability).
		Str("description", weather.Description).
		Msg("Fetched arrival weather")

	return &weather, nil
}

// atHour picks the forecast for date+hour, falling back to the first entry for that hour on
// any date. Missing precipitation or weather code values count as zero.
func (h *hourlyForecast) atHour(date string, hour int) (ctdf.ArrivalWeather, bool) {
	if h == nil {
		return ctdf.ArrivalWeather{}, false
	}

	target := fmt.Sprintf("%sT%02d:00", date, hour)
	index := -1
	for i, forecastTime := range h.Time {
		if forecastTime == target {
			index = i
			break
		}
	}

	if index == -1 || index >= len(h.PrecipitationProbability) {
		index = -1
		hourMarker := fmt.Sprintf("T%02d:", hour)
		for i, forecastTime := range h.Time {
			if strings.Contains(forecastTime, hourMarker) {
				index = i
				break
			}
		}
	}

	if index == -1 || index >= len(h.PrecipitationProbability) {
		return ctdf.ArrivalWeather{}, false
	}

	precipitation := 0.0
	if index < len(h.Precipitation) {
		precipitation = h.Precipitation[index]
	}
	weatherCode := 0
	if index < len(h.WeatherCode) {
		weatherCode = h.WeatherCode[index]
	}

	return ctdf.NewArrivalWeather(h.PrecipitationProbability[index], precipitation, weatherCode), true
}

func (s Source) forecastLookup(ctx context.Context, path string) ([]byte, error) {
	if cached, ok := s.Cache.Get(ctx, path); ok {
		return []byte(cached), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", s.Endpoint, path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast request: returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}

	s.Cache.Set(ctx, path, string(body), s.CacheExpiration)

	return body, nil
}
