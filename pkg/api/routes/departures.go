package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railcommute/pkg/realtime/board"
)

func DeparturesRouter(router fiber.Router, departureBoard *board.Board) {
	router.Get("/", func(c *fiber.Ctx) error {
		snapshot := departureBoard.Snapshot()

		// Nothing fetched yet so do the first load now
		if snapshot.Data == nil && snapshot.Error == "" {
			var err error
			snapshot, err = departureBoard.Load(c.UserContext())
			if err != nil {
				return sendError(c, fiber.StatusBadGateway, snapshot.Error)
			}
		}

		return sendReduced(c, fiber.StatusOK, "departures", snapshot)
	})

	router.Post("/toggle", func(c *fiber.Ctx) error {
		snapshot, err := departureBoard.ToggleDirection(c.UserContext())
		if err != nil {
			return sendError(c, fiber.StatusBadGateway, snapshot.Error)
		}

		return sendReduced(c, fiber.StatusOK, "departures", snapshot)
	})

	router.Post("/refresh", func(c *fiber.Ctx) error {
		snapshot, err := departureBoard.Refresh(c.UserContext())
		if err != nil {
			return sendError(c, fiber.StatusBadGateway, snapshot.Error)
		}

		return sendReduced(c, fiber.StatusOK, "departures", snapshot)
	})

	router.Post("/reload", func(c *fiber.Ctx) error {
		snapshot, err := departureBoard.Load(c.UserContext())
		if err != nil {
			return sendError(c, fiber.StatusBadGateway, snapshot.Error)
		}

		return sendReduced(c, fiber.StatusOK, "departures", snapshot)
	})
}
