package course

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/lms-api/handlers"
	"github.com/campuslane/lms-api/model"
	"github.com/campuslane/lms-api/services"
	"github.com/campuslane/lms-api/utils/middleware"
	"github.com/campuslane/lms-api/utils/response"
	"github.com/campuslane/lms-api/utils/validation"
)

// CreateQuizRequest represents the request body for creating a quiz
type CreateQuizRequest struct {
	Title            string `json:"title" validate:"required,min=1,max=255"`
	TimeLimitMinutes *int   `json:"time_limit_minutes" validate:"omitempty,min=1"`
}

// AddQuestionRequest represents the request body for adding a question.
// Field-level validation happens in the catalog service.
type AddQuestionRequest struct {
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
}

// SubmitAttemptRequest maps question ids to the selected option letter.
type SubmitAttemptRequest struct {
	Answers map[uint]string `json:"answers"`
}

// QuestionAuthorView includes the correct answer for the owning teacher's
// authoring screen. The attempt view uses the model directly, which never
// marshals the answer.
type QuestionAuthorView struct {
	model.Question
	CorrectOption string `json:"correct_option"`
}

// CreateQuiz handles POST /api/v1/courses/:id/quizzes
func (h *CourseHandler) CreateQuiz(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var req CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, "Invalid quiz data", validation.FormatValidationErrors(err))
	}

	quiz, err := h.catalog.CreateQuiz(c.Context(), user, courseID, services.CreateQuizInput{
		Title:            req.Title,
		TimeLimitMinutes: req.TimeLimitMinutes,
	})
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, quiz)
}

// AddQuestion handles POST /api/v1/quizzes/:id/questions
func (h *CourseHandler) AddQuestion(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	quizID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz id")
	}

	var req AddQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	question, err := h.catalog.AddQuestion(c.Context(), user, quizID, services.QuestionInput{
		Text:          req.Text,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: req.CorrectOption,
	})
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, QuestionAuthorView{Question: *question, CorrectOption: question.CorrectOption})
}

// ListQuestions handles GET /api/v1/quizzes/:id/questions for the quiz owner
func (h *CourseHandler) ListQuestions(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	quizID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz id")
	}

	questions, err := h.catalog.ListQuestions(c.Context(), user, quizID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	views := make([]QuestionAuthorView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuestionAuthorView{Question: q, CorrectOption: q.CorrectOption})
	}
	return response.Success(c, views)
}

// GetQuizForAttempt handles GET /api/v1/quizzes/:id/attempt. The questions are
// returned without answers.
func (h *CourseHandler) GetQuizForAttempt(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	quizID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz id")
	}

	quiz, questions, err := h.quizzes.GetForAttempt(c.Context(), user, quizID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, fiber.Map{
		"quiz":      quiz,
		"questions": questions,
	})
}

// SubmitAttempt handles POST /api/v1/quizzes/:id/attempt. Scoring is a single
// pass over the submitted answers; nothing is stored and a retake simply
// scores again.
func (h *CourseHandler) SubmitAttempt(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	quizID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz id")
	}

	var req SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.quizzes.Score(c.Context(), user, quizID, req.Answers)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, result)
}
