package session

import (
	"github.com/travigo/railcommute/pkg/ctdf"
)

// State is one of Idle, Active or Completed
type State interface {
	Name() string
	isState()
}

type Idle struct{}

func (Idle) Name() string { return "Idle" }
func (Idle) isState() {}

type Active struct {
	Journey  *ctdf.ActiveJourney  `json:"journey" groups:"basic,detailed"`
	Progress ctdf.JourneyProgress `json:"progress" groups:"basic,detailed"`
}

func (Active) Name() string { return "Active" }
func (Active) isState() {}

// Completed holds the progress from the tick that saw the train arrive
type Completed struct {
	Journey  *ctdf.ActiveJourney  `json:"journey" groups:"basic,detailed"`
	Progress ctdf.JourneyProgress `json:"progress" groups:"basic,detailed"`
}

func (Completed) Name() string { return "Completed" }
func (Completed) isState() {}

// WeatherState is one of WeatherIdle, WeatherLoading, WeatherSuccess or WeatherError
type WeatherState interface {
	Name() string
	isWeatherState()
}

type WeatherIdle struct{}

func (WeatherIdle) Name() string { return "Idle" }
func (WeatherIdle) isWeatherState() {}

type WeatherLoading struct{}

func (WeatherLoading) Name() string { return "Loading" }
func (WeatherLoading) isWeatherState() {}

type WeatherSuccess struct {
	Weather ctdf.ArrivalWeather `json:"weather" groups:"basic,detailed"`
}

func (WeatherSuccess) Name() string { return "Success" }
func (WeatherSuccess) isWeatherState() {}

type WeatherError struct {
	Message string `json:"message" groups:"basic,detailed"`
}

func (WeatherError) Name() string { return "Error" }
func (WeatherError) isWeatherState() {}

// JourneyOf gives the journey for Active and Completed states
func JourneyOf(state State) *ctdf.ActiveJourney {
	switch state := state.(type) {
	case Active:
		return state.Journey
	case Completed:
		return state.Journey
	default:
		return nil
	}
}
