package course

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/lms-api/handlers"
	"github.com/campuslane/lms-api/services"
	"github.com/campuslane/lms-api/services/spaces"
	"github.com/campuslane/lms-api/utils/middleware"
	"github.com/campuslane/lms-api/utils/response"
	"github.com/campuslane/lms-api/utils/validation"
)

// CourseHandler handles catalog, lesson, enrollment and quiz requests
type CourseHandler struct {
	catalog     *services.CatalogService
	enrollments *services.EnrollmentService
	quizzes     *services.QuizService
	spaces      *spaces.Client
	validator   *validation.Validator
}

// NewCourseHandler creates a new course handler. spacesClient may be nil when
// object storage is not configured; video uploads then return 503.
func NewCourseHandler(catalog *services.CatalogService, enrollments *services.EnrollmentService, quizzes *services.QuizService, spacesClient *spaces.Client) *CourseHandler {
	return &CourseHandler{
		catalog:     catalog,
		enrollments: enrollments,
		quizzes:     quizzes,
		spaces:      spacesClient,
		validator:   validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.catalog.ListCourses(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, courses)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	// Viewer is optional; the detail page is public but flags enrollment for
	// signed-in students.
	viewer, _ := middleware.GetUser(c)

	detail, err := h.catalog.GetCourse(c.Context(), viewer, courseID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, detail)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, "Invalid course data", validation.FormatValidationErrors(err))
	}

	course, err := h.catalog.CreateCourse(c.Context(), user, services.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	if err := h.catalog.DeleteCourse(c.Context(), user, courseID); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Course deleted", nil)
}

// TeacherDashboard handles GET /api/v1/teacher/courses
func (h *CourseHandler) TeacherDashboard(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courses, err := h.catalog.ListCoursesOwned(c.Context(), user)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, courses)
}

// parseIDParam parses a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
