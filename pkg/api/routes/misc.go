package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

// detailGroups gives the sheriff groups for the request, ?detail=full includes calling points
func detailGroups(c *fiber.Ctx) []string {
	if c.Query("detail") == "full" {
		return []string{"basic", "detailed"}
	}

	return []string{"basic"}
}

func sendReduced(c *fiber.Ctx, status int, name string, value interface{}) error {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: detailGroups(c),
	}, value)

	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sherrif could not reduce "+name)
	}

	c.Status(status)
	return c.JSON(reduced)
}

func sendError(c *fiber.Ctx, status int, message string) error {
	c.Status(status)
	return c.JSON(fiber.Map{
		"error": message,
	})
}
