package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/preferences"
)

type updateSettingsRequest struct {
	TwoMinuteAlertEnabled *bool   `json:"twoMinuteAlertEnabled"`
	AlertPreference       *string `json:"alertPreference"`
}

func SettingsRouter(router fiber.Router, store preferences.Store) {
	router.Get("/", func(c *fiber.Ctx) error {
		settings, err := store.Get(c.UserContext())
		if err != nil {
			log.Error().Err(err).Msg("Failed to read settings")
			return sendError(c, fiber.StatusInternalServerError, "Could not read settings")
		}

		return sendReduced(c, fiber.StatusOK, "settings", settings)
	})

	router.Put("/", func(c *fiber.Ctx) error {
		var request updateSettingsRequest
		if err := c.BodyParser(&request); err != nil {
			return sendError(c, fiber.StatusBadRequest, "Could not parse settings")
		}

		if request.AlertPreference != nil {
			preference := ctdf.AlertPreference(*request.AlertPreference)
			if !preference.Valid() {
				return sendError(c, fiber.StatusBadRequest, "alertPreference must be AUDIO_IF_BLUETOOTH or SILENT_VIBRATE")
			}

			if err := store.SetAlertPreference(c.UserContext(), preference); err != nil {
				log.Error().Err(err).Msg("Failed to save alert preference")
				return sendError(c, fiber.StatusInternalServerError, "Could not save settings")
			}
		}

		if request.TwoMinuteAlertEnabled != nil {
			if err := store.SetTwoMinuteAlertEnabled(c.UserContext(), *request.TwoMinuteAlertEnabled); err != nil {
				log.Error().Err(err).Msg("Failed to save alert toggle")
				return sendError(c, fiber.StatusInternalServerError, "Could not save settings")
			}
		}

		settings, err := store.Get(c.UserContext())
		if err != nil {
			return sendError(c, fiber.StatusInternalServerError, "Could not read settings")
		}

		return sendReduced(c, fiber.StatusOK, "settings", settings)
	})
}
