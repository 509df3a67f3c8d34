package course

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/lms-api/handlers"
	"github.com/campuslane/lms-api/utils/middleware"
	"github.com/campuslane/lms-api/utils/response"
)

// Enroll handles POST /api/v1/courses/:id/enroll. Enrolling twice is not an
// error; the existing enrollment is returned.
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	enrollment, already, err := h.enrollments.Enroll(c.Context(), user, courseID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	if already {
		return response.SuccessWithMessage(c, "Already enrolled", enrollment)
	}
	return response.Created(c, enrollment)
}

// StudentDashboard handles GET /api/v1/student/dashboard
func (h *CourseHandler) StudentDashboard(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	dashboard, err := h.enrollments.Dashboard(c.Context(), user)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, dashboard)
}

// MyCourses handles GET /api/v1/student/courses
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	enrollments, err := h.enrollments.ListEnrollments(c.Context(), user)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, enrollments)
}

// CompleteLesson handles POST /api/v1/courses/:id/lessons/:lessonID/complete
func (h *CourseHandler) CompleteLesson(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}
	lessonID, err := parseIDParam(c, "lessonID")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson id")
	}

	enrollment, err := h.enrollments.CompleteLesson(c.Context(), user, courseID, lessonID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, enrollment)
}
