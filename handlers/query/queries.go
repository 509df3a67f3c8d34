package query

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/lms-api/handlers"
	"github.com/campuslane/lms-api/services"
	"github.com/campuslane/lms-api/utils/middleware"
	"github.com/campuslane/lms-api/utils/response"
	"github.com/campuslane/lms-api/utils/validation"
)

// QueryHandler handles help-desk query requests
type QueryHandler struct {
	queries   *services.QueryService
	validator *validation.Validator
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queries *services.QueryService) *QueryHandler {
	return &QueryHandler{
		queries:   queries,
		validator: validation.NewValidator(),
	}
}

// CreateQueryRequest represents the request body for filing a query
type CreateQueryRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required"`
	CourseID    uint   `json:"course_id" validate:"required,min=1"`
	LessonID    *uint  `json:"lesson_id" validate:"omitempty,min=1"`
}

// StaffUpdateRequest represents a staff response to a query
type StaffUpdateRequest struct {
	Response string `json:"response"`
	Status   string `json:"status" validate:"required"`
}

// StudentActionRequest represents a student action on their own query
type StudentActionRequest struct {
	Action string `json:"action" validate:"required"`
	Reply  string `json:"reply"`
}

// List handles GET /api/v1/queries. Students see their own queries; staff see
// queries assigned to them plus all open ones.
func (h *QueryHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	queries, err := h.queries.List(c.Context(), user)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, queries)
}

// Create handles POST /api/v1/queries
func (h *QueryHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, "Invalid query data", validation.FormatValidationErrors(err))
	}

	query, err := h.queries.Create(c.Context(), user, services.CreateQueryInput{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		LessonID:    req.LessonID,
	})
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, query)
}

// Get handles GET /api/v1/queries/:id
func (h *QueryHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid query id")
	}

	query, err := h.queries.Get(c.Context(), user, id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, query)
}

// StaffUpdate handles PUT /api/v1/queries/:id/respond. Staff pick any status;
// an unassigned query is claimed by the responder.
func (h *QueryHandler) StaffUpdate(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid query id")
	}

	var req StaffUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	query, err := h.queries.StaffUpdate(c.Context(), user, id, req.Response, req.Status)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, query)
}

// StudentAction handles POST /api/v1/queries/:id/action with {action, reply}.
// An empty reply or unknown action returns the unchanged query.
func (h *QueryHandler) StudentAction(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid query id")
	}

	var req StudentActionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	query, changed, err := h.queries.StudentAct(c.Context(), user, id, req.Action, req.Reply)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	if !changed {
		return response.SuccessWithMessage(c, "No changes applied", query)
	}
	return response.Success(c, query)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
