package routes

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/realtime/board"
	"github.com/travigo/railcommute/pkg/realtime/progress"
	"github.com/travigo/railcommute/pkg/realtime/session"
)

type journeyResponse struct {
	State            string                `json:"state" groups:"basic,detailed"`
	Journey          *ctdf.ActiveJourney   `json:"journey" groups:"basic,detailed"`
	Progress         *ctdf.JourneyProgress `json:"progress" groups:"basic,detailed"`
	ProgressFraction *float64              `json:"progressFraction" groups:"basic,detailed"`

	Weather  weatherResponse           `json:"weather" groups:"basic,detailed"`
	Settings ctdf.JourneyAlertSettings `json:"settings" groups:"basic,detailed"`
}

type weatherResponse struct {
	State   string               `json:"state" groups:"basic,detailed"`
	Weather *ctdf.ArrivalWeather `json:"weather" groups:"basic,detailed"`
	Message string               `json:"message" groups:"basic,detailed"`
}

type startJourneyRequest struct {
	ServiceID string `json:"serviceId"`
}

func JourneyRouter(router fiber.Router, journeySession *session.Session, departureBoard *board.Board) {
	router.Get("/", func(c *fiber.Ctx) error {
		return sendReduced(c, fiber.StatusOK, "journey", newJourneyResponse(journeySession, journeySession.State()))
	})

	router.Post("/", func(c *fiber.Ctx) error {
		var request startJourneyRequest
		if err := c.BodyParser(&request); err != nil || request.ServiceID == "" {
			return sendError(c, fiber.StatusBadRequest, "A serviceId must be provided")
		}

		departure, direction, err := departureBoard.Departure(request.ServiceID)
		if errors.Is(err, board.ErrUnknownDeparture) {
			return sendError(c, fiber.StatusNotFound, "Could not find a departure matching serviceId")
		}

		if _, err := journeySession.Start(c.UserContext(), departure, direction); err != nil {
			return sendError(c, fiber.StatusBadRequest, err.Error())
		}

		return sendReduced(c, fiber.StatusCreated, "journey", newJourneyResponse(journeySession, journeySession.State()))
	})

	router.Post("/refresh", func(c *fiber.Ctx) error {
		state, err := journeySession.Tick(c.UserContext())
		if errors.Is(err, session.ErrNoJourney) {
			return sendError(c, fiber.StatusNotFound, err.Error())
		} else if err != nil {
			return sendError(c, fiber.StatusInternalServerError, err.Error())
		}

		return sendReduced(c, fiber.StatusOK, "journey", newJourneyResponse(journeySession, state))
	})

	router.Delete("/", func(c *fiber.Ctx) error {
		if err := journeySession.End(); errors.Is(err, session.ErrNoJourney) {
			return sendError(c, fiber.StatusNotFound, err.Error())
		}

		return sendReduced(c, fiber.StatusOK, "journey", newJourneyResponse(journeySession, journeySession.State()))
	})

	router.Get("/weather", func(c *fiber.Ctx) error {
		return sendReduced(c, fiber.StatusOK, "weather", newWeatherResponse(journeySession.Weather()))
	})
}

func newJourneyResponse(journeySession *session.Session, state session.State) journeyResponse {
	response := journeyResponse{
		State:    strings.ToUpper(state.Name()),
		Journey:  session.JourneyOf(state),
		Weather:  newWeatherResponse(journeySession.Weather()),
		Settings: journeySession.Settings(),
	}

	var journeyProgress *ctdf.JourneyProgress
	switch state := state.(type) {
	case session.Active:
		journeyProgress = &state.Progress
	case session.Completed:
		journeyProgress = &state.Progress
	}

	if journeyProgress != nil {
		fraction := progress.Fraction(*journeyProgress)

		response.Progress = journeyProgress
		response.ProgressFraction = &fraction
	}

	return response
}

func newWeatherResponse(state session.WeatherState) weatherResponse {
	response := weatherResponse{
		State: strings.ToUpper(state.Name()),
	}

	switch state := state.(type) {
	case session.WeatherSuccess:
		response.Weather = &state.Weather
	case session.WeatherError:
		response.Message = state.Message
	}

	return response
}
