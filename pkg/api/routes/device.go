package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/location"
	"github.com/travigo/railcommute/pkg/notify"
)

type updateDeviceRequest struct {
	Latitude               *float64 `json:"latitude"`
	Longitude              *float64 `json:"longitude"`
	WirelessAudioConnected *bool    `json:"wirelessAudioConnected"`
}

type deviceResponse struct {
	WirelessAudioConnected bool                 `json:"wirelessAudioConnected" groups:"basic,detailed"`
	Location               *location.Resolution `json:"location" groups:"basic,detailed"`
}

// DeviceRouter takes state reports from the travellers phone, where it is and whether
// a wireless audio output is connected
func DeviceRouter(router fiber.Router, route *config.Route, reported *location.Reported, audio *notify.DeviceAudio) {
	router.Put("/", func(c *fiber.Ctx) error {
		var request updateDeviceRequest
		if err := c.BodyParser(&request); err != nil {
			return sendError(c, fiber.StatusBadRequest, "Could not parse device state")
		}

		if (request.Latitude == nil) != (request.Longitude == nil) {
			return sendError(c, fiber.StatusBadRequest, "latitude and longitude must be provided together")
		}

		if request.Latitude != nil {
			coordinates := ctdf.Coordinates{Latitude: *request.Latitude, Longitude: *request.Longitude}
			if coordinates.Latitude < -90 || coordinates.Latitude > 90 || coordinates.Longitude < -180 || coordinates.Longitude > 180 {
				return sendError(c, fiber.StatusBadRequest, "Co-ordinates are out of range")
			}

			reported.Report(coordinates)
		}

		if request.WirelessAudioConnected != nil {
			audio.SetWirelessAudioConnected(*request.WirelessAudioConnected)
		}

		return sendReduced(c, fiber.StatusOK, "device", deviceResponse{
			WirelessAudioConnected: audio.WirelessAudioConnected(c.UserContext()),
			Location:               location.Locate(c.UserContext(), reported, route),
		})
	})
}
