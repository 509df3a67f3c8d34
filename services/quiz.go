package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/campuslane/lms-api/model"
)

// QuizService scores quiz submissions. An attempt is a single atomic scoring
// pass; nothing is persisted and repeated submissions re-score independently.
type QuizService struct {
	db    *gorm.DB
	authz *Authorizer
}

func NewQuizService(db *gorm.DB, authz *Authorizer) *QuizService {
	return &QuizService{db: db, authz: authz}
}

// AttemptResult is the outcome of one scoring pass.
type AttemptResult struct {
	QuizID   uint    `json:"quiz_id"`
	RawScore int     `json:"score"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// GetForAttempt returns the quiz and its questions for an enrolled student to
// take. Correct answers are carried on the model but stripped by the handler
// DTO (Question marshals without CorrectOption).
func (s *QuizService) GetForAttempt(ctx context.Context, actor *model.User, quizID uint) (*model.Quiz, []model.Question, error) {
	quiz, questions, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	res := Resource{CourseID: quiz.CourseID, OwnerID: quiz.CreatedByID}
	if err := s.authz.Authorize(ctx, actor, ActionAttemptQuiz, res).Err(); err != nil {
		return nil, nil, err
	}
	return quiz, questions, nil
}

// Score evaluates a submission against the quiz's questions. answers maps
// question id to the selected single-letter option. A missing or unknown
// answer counts as incorrect, never as an error. A quiz with no questions
// scores total=0, percent=0.
func (s *QuizService) Score(ctx context.Context, actor *model.User, quizID uint, answers map[uint]string) (*AttemptResult, error) {
	quiz, questions, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	res := Resource{CourseID: quiz.CourseID, OwnerID: quiz.CreatedByID}
	if err := s.authz.Authorize(ctx, actor, ActionAttemptQuiz, res).Err(); err != nil {
		return nil, err
	}

	correct := 0
	for _, q := range questions {
		if answers[q.ID] == q.CorrectOption {
			correct++
		}
	}

	result := &AttemptResult{
		QuizID:   quiz.ID,
		RawScore: correct,
		Total:    len(questions),
	}
	if result.Total > 0 {
		result.Percent = float64(correct) / float64(result.Total) * 100
	}
	return result, nil
}

func (s *QuizService) loadQuiz(ctx context.Context, quizID uint) (*model.Quiz, []model.Question, error) {
	var quiz model.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("quiz")
		}
		return nil, nil, err
	}

	var questions []model.Question
	if err := s.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, nil, err
	}
	return &quiz, questions, nil
}
