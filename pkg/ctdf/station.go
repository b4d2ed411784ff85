package ctdf

import "fmt"

type Station struct {
	Crs  string `json:"crs" yaml:"crs" groups:"basic,detailed"`
	Name string `json:"name" yaml:"name" groups:"basic,detailed"`

	Location Coordinates `json:"location" yaml:"location" groups:"detailed"`
}

func (s Station) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Crs)
}

// TravelDirection is which end of the line the traveller is heading to
type TravelDirection string

const (
	TravelDirectionToA TravelDirection = "TO_A"
	TravelDirectionToB TravelDirection = "TO_B"
)

func (d TravelDirection) Valid() bool {
	return d == TravelDirectionToA || d == TravelDirectionToB
}

func (d TravelDirection) Reverse() TravelDirection {
	if d == TravelDirectionToA {
		return TravelDirectionToB
	}

	return TravelDirectionToA
}
