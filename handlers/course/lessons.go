package course

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/lms-api/handlers"
	"github.com/campuslane/lms-api/services"
	"github.com/campuslane/lms-api/utils/middleware"
	"github.com/campuslane/lms-api/utils/response"
)

// Video uploads are capped at 500MB per file.
const maxVideoSize = 500 * 1024 * 1024

// CreateLesson handles POST /api/v1/courses/:id/lessons. Accepts multipart
// form data with title, content, order and up to two optional video files
// (video_1, video_2), or a plain JSON body without videos.
func (h *CourseHandler) CreateLesson(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	in := services.CreateLessonInput{}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		in.Title = c.FormValue("title")
		in.Content = c.FormValue("content")
		if order, err := strconv.Atoi(c.FormValue("order", "1")); err == nil {
			in.Order = order
		}

		video1, _ := c.FormFile("video_1")
		video2, _ := c.FormFile("video_2")
		if video1 != nil || video2 != nil {
			if h.spaces == nil {
				return response.ServiceUnavailable(c, "Video storage is not configured")
			}
			if in.Video1URL, err = h.uploadVideo(c, video1); err != nil {
				return response.InternalServerError(c, "Failed to upload video")
			}
			if in.Video2URL, err = h.uploadVideo(c, video2); err != nil {
				return response.InternalServerError(c, "Failed to upload video")
			}
		}
	} else {
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Order   int    `json:"order"`
		}
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		in.Title = req.Title
		in.Content = req.Content
		in.Order = req.Order
	}

	lesson, err := h.catalog.CreateLesson(c.Context(), user, courseID, in)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, lesson)
}

// GetLesson handles GET /api/v1/courses/:id/lessons/:lessonID
func (h *CourseHandler) GetLesson(c *fiber.Ctx) error {
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

	lesson, err := h.catalog.GetLesson(c.Context(), user, courseID, lessonID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, lesson)
}

// uploadVideo stores one optional video file and returns its public URL.
// A nil header is not an error; the lesson simply has no video in that slot.
func (h *CourseHandler) uploadVideo(c *fiber.Ctx, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", nil
	}
	if header.Size > maxVideoSize {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "video too large")
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	return h.spaces.UploadLessonVideo(c.Context(), header.Filename, file, contentType)
}
