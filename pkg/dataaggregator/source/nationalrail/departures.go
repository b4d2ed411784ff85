package nationalrail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/dataaggregator/query"
	"github.com/travigo/railcommute/pkg/dataaggregator/source"
)

// DeparturesQuery fetches the board and runs it through the classifier. Any transport or
// decoding failure comes back as an error for the caller to show; nothing is retried here.
func (s Source) DeparturesQuery(ctx context.Context, q query.Departures) (*ctdf.TrainData, error) {
	if q.Origin.Crs == "" || q.Destination.Crs == "" {
		return nil, source.UnsupportedSourceError
	}

	path := fmt.Sprintf("departures/%s/to/%s", url.PathEscape(q.Origin.Crs), url.PathEscape(q.Destination.Crs))
	parameters := url.Values{}
	parameters.Set("numRows", fmt.Sprint(q.Count))
	parameters.Set("expand", fmt.Sprint(q.IncludeCallingPoints))
	path = fmt.Sprintf("%s?%s", path, parameters.Encode())

	body, err := s.gatewayLookup(ctx, path)
	if err != nil {
		return nil, err
	}

	var response departuresResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode departures: %w", err)
	}

	trainData := &ctdf.TrainData{
		Departures:  s.Classifier.Departures(response.TrainServices, q.Direction),
		Disruptions: mapDisruptions(response.NrccMessages),
		FromStation: stringOr(response.LocationName, q.Origin.Crs),
		ToStation:   stringOr(response.FilterLocationName, q.Destination.Crs),
		GeneratedAt: response.GeneratedAt,
	}

	if s.Classifier.Route != nil {
		s.Classifier.Route.Transforms.Apply(trainData)
	}

	log.Debug().
		Str("from", q.Origin.Crs).
		Str("to", q.Destination.Crs).
		Int("services", len(response.TrainServices)).
		Int("departures", len(trainData.Departures)).
		Msg("Fetched departures")

	return trainData, nil
}

func (s Source) gatewayLookup(ctx context.Context, path string) ([]byte, error) {
	if cached, ok := s.Cache.Get(ctx, path); ok {
		return []byte(cached), nil
	}

	requestURL := fmt.Sprintf("%s/%s", s.GatewayEndpoint, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header["user-agent"] = []string{"curl/7.54.1"}
	req.Header.Set("Accept", "application/json")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("departures request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("departures request: gateway returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("departures request: %w", err)
	}

	s.Cache.Set(ctx, path, string(body), s.CacheExpiration)

	return body, nil
}

type departuresResponse struct {
	TrainServices      []trainService `json:"trainServices"`
	GeneratedAt        *string        `json:"generatedAt"`
	LocationName       *string        `json:"locationName"`
	Crs                *string        `json:"crs"`
	FilterLocationName *string        `json:"filterLocationName"`
	FilterCrs          *string        `json:"filtercrs"`
	NrccMessages       []nrccMessage  `json:"nrccMessages"`
	PlatformAvailable  *bool          `json:"platformAvailable"`
}

type trainService struct {
	ScheduledDeparture *string `json:"std"`
	EstimatedDeparture *string `json:"etd"`
	ScheduledArrival   *string `json:"sta"`
	EstimatedArrival   *string `json:"eta"`
	Platform           *string `json:"platform"`
	Operator           *string `json:"operator"`
	OperatorCode       *string `json:"operatorCode"`
	ServiceID          *string `json:"serviceID"`
	RSID               *string `json:"rsid"`

	Origin      []stationInfo `json:"origin"`
	Destination []stationInfo `json:"destination"`

	SubsequentCallingPoints []callingPointList `json:"subsequentCallingPoints"`
	PreviousCallingPoints   []callingPointList `json:"previousCallingPoints"`

	IsCancelled  *bool   `json:"isCancelled"`
	CancelReason *string `json:"cancelReason"`
	DelayReason  *string `json:"delayReason"`
	Length       *int    `json:"length"`
}

type stationInfo struct {
	LocationName *string `json:"locationName"`
	Crs          *string `json:"crs"`
	Via          *string `json:"via"`
}

type callingPointList struct {
	CallingPoints         []ctdf.CallingPoint `json:"callingPoint"`
	ServiceChangeRequired *bool               `json:"serviceChangeRequired"`
}

type nrccMessage struct {
	Category     *string `json:"category"`
	Severity     *int    `json:"severity"`
	XhtmlMessage *string `json:"xhtmlMessage"`
}

// forwardCallingPoints flattens the subsequent calling point lists into route order
func (t trainService) forwardCallingPoints() []ctdf.CallingPoint {
	callingPoints := []ctdf.CallingPoint{}

	for _, list := range t.SubsequentCallingPoints {
		callingPoints = append(callingPoints, list.CallingPoints...)
	}

	return callingPoints
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}

	return *s
}
