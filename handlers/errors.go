package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/lms-api/services"
	"github.com/campuslane/lms-api/utils/response"
)

// ServiceError maps a service-layer error onto the HTTP response envelope.
// Authorization denials are 403, missing resources 404, malformed input 422
// with field detail; anything else is a 500.
func ServiceError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsAuthorization(err):
		return response.Forbidden(c, err.Error())
	case services.IsNotFound(err):
		return response.NotFound(c, err.Error())
	default:
		if ve, ok := services.IsValidation(err); ok {
			return response.ValidationFailed(c, ve.Error(), ve.Fields)
		}
		return response.InternalServerError(c, "Something went wrong")
	}
}
