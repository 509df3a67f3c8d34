package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/lms-api/database"
	"github.com/campuslane/lms-api/utils/response"
)

// HandleCheckHealth reports liveness plus database connectivity.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	status := "ok"
	dbStatus := "ok"
	if err := store.HealthCheck(); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
	}

	return response.Success(c, fiber.Map{
		"status":   status,
		"database": dbStatus,
	})
}
