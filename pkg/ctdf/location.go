package ctdf

import "math"

const earthRadiusMiles = 3958.8

type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude" groups:"basic,detailed"`
	Longitude float64 `json:"longitude" yaml:"longitude" groups:"basic,detailed"`
}

func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// DistanceMiles is the great-circle (haversine) distance between two points
func (c Coordinates) DistanceMiles(other Coordinates) float64 {
	dLat := toRadians(other.Latitude - c.Latitude)
	dLon := toRadians(other.Longitude - c.Longitude)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRadians(c.Latitude))*math.Cos(toRadians(other.Latitude))*math.Pow(math.Sin(dLon/2), 2)

	return earthRadiusMiles * 2 * math.Asin(math.Sqrt(a))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
