package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/campuslane/lms-api/model"
)

// CatalogService owns course, lesson, quiz and question authoring plus the
// public catalog reads. Every mutation consults the authorization gate first.
type CatalogService struct {
	db    *gorm.DB
	authz *Authorizer
}

func NewCatalogService(db *gorm.DB, authz *Authorizer) *CatalogService {
	return &CatalogService{db: db, authz: authz}
}

// CreateCourseInput carries the fields a teacher submits for a new course.
type CreateCourseInput struct {
	Title       string
	Description string
}

// CreateCourse creates a course owned by actor. Teachers only; the course is
// never reassigned afterwards.
func (s *CatalogService) CreateCourse(ctx context.Context, actor *model.User, in CreateCourseInput) (*model.Course, error) {
	res := Resource{OwnerID: ownerIDFor(actor)}
	if err := s.authz.Authorize(ctx, actor, ActionManageCourse, res).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError(errors.New("title is required"),
			FieldError{Field: "title", Error: "title is required"})
	}

	course := model.Course{
		Title:       in.Title,
		Description: in.Description,
		TeacherID:   actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCourses returns the full public catalog, newest first.
func (s *CatalogService) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// CourseDetail is the public course page: course, ordered lessons, quizzes,
// and whether the (optional) viewer is enrolled.
type CourseDetail struct {
	Course   model.Course   `json:"course"`
	Lessons  []model.Lesson `json:"lessons"`
	Quizzes  []model.Quiz   `json:"quizzes"`
	Enrolled bool           `json:"enrolled"`
}

// GetCourse returns the course detail view. viewer may be nil; browsing the
// catalog is public.
func (s *CatalogService) GetCourse(ctx context.Context, viewer *model.User, courseID uint) (*CourseDetail, error) {
	if err := s.authz.Authorize(ctx, viewer, ActionBrowseCatalog, Resource{}).Err(); err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var quizzes []model.Quiz
	if err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: *course, Lessons: lessons, Quizzes: quizzes}
	if viewer != nil {
		detail.Enrolled = s.authz.isEnrolled(ctx, viewer.ID, courseID)
	}
	return detail, nil
}

// ListLessons returns a course's lessons ascending by order; equal orders keep
// insertion order via the id tiebreak.
func (s *CatalogService) ListLessons(ctx context.Context, courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("\"order\" ASC, id ASC").
		Find(&lessons).Error
	return lessons, err
}

// ListCoursesOwned returns the teacher dashboard: courses owned by actor,
// newest first.
func (s *CatalogService) ListCoursesOwned(ctx context.Context, actor *model.User) ([]model.Course, error) {
	if err := s.authz.Authorize(ctx, actor, ActionViewTeacherDashboard, Resource{}).Err(); err != nil {
		return nil, err
	}
	var courses []model.Course
	err := s.db.WithContext(ctx).
		Where("teacher_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// CreateLessonInput carries the fields for a new lesson. Video URLs are opaque
// references produced by the upload layer.
type CreateLessonInput struct {
	Title     string
	Content   string
	Order     int
	Video1URL string
	Video2URL string
}

// CreateLesson adds a lesson to a course owned by actor.
func (s *CatalogService) CreateLesson(ctx context.Context, actor *model.User, courseID uint, in CreateLessonInput) (*model.Lesson, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	res := Resource{CourseID: course.ID, OwnerID: course.TeacherID}
	if err := s.authz.Authorize(ctx, actor, ActionManageCourse, res).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError(errors.New("title is required"),
			FieldError{Field: "title", Error: "title is required"})
	}
	if in.Order < 1 {
		in.Order = 1
	}

	lesson := model.Lesson{
		CourseID:  course.ID,
		Title:     in.Title,
		Content:   in.Content,
		Order:     in.Order,
		Video1URL: in.Video1URL,
		Video2URL: in.Video2URL,
	}
	if err := s.db.WithContext(ctx).Create(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetLesson returns a lesson of a course for actor. Gated: enrolled students
// and the owning teacher.
func (s *CatalogService) GetLesson(ctx context.Context, actor *model.User, courseID, lessonID uint) (*model.Lesson, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var lesson model.Lesson
	if err := s.db.WithContext(ctx).
		Where("id = ? AND course_id = ?", lessonID, courseID).
		First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("lesson")
		}
		return nil, err
	}

	res := Resource{CourseID: course.ID, OwnerID: course.TeacherID}
	if err := s.authz.Authorize(ctx, actor, ActionViewLesson, res).Err(); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CreateQuizInput carries the fields for a new quiz.
type CreateQuizInput struct {
	Title            string
	TimeLimitMinutes *int
}

// CreateQuiz adds a quiz to a course owned by actor.
func (s *CatalogService) CreateQuiz(ctx context.Context, actor *model.User, courseID uint, in CreateQuizInput) (*model.Quiz, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	res := Resource{CourseID: course.ID, OwnerID: course.TeacherID}
	if err := s.authz.Authorize(ctx, actor, ActionManageCourse, res).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError(errors.New("title is required"),
			FieldError{Field: "title", Error: "title is required"})
	}

	quiz := model.Quiz{
		CourseID:         course.ID,
		Title:            in.Title,
		CreatedByID:      actor.ID,
		TimeLimitMinutes: in.TimeLimitMinutes,
	}
	if err := s.db.WithContext(ctx).Create(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// QuestionInput carries a new multiple-choice question. OptionC and OptionD
// may be blank; CorrectOption must point at a non-blank option.
type QuestionInput struct {
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
}

// AddQuestion appends a question to a quiz created by actor and returns the
// quiz's questions so the authoring loop can re-render.
func (s *CatalogService) AddQuestion(ctx context.Context, actor *model.User, quizID uint, in QuestionInput) (*model.Question, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	res := Resource{CourseID: quiz.CourseID, OwnerID: quiz.CreatedByID}
	if err := s.authz.Authorize(ctx, actor, ActionManageQuiz, res).Err(); err != nil {
		return nil, err
	}

	question := model.Question{
		QuizID:        quiz.ID,
		Text:          in.Text,
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectOption: strings.ToUpper(strings.TrimSpace(in.CorrectOption)),
	}
	if err := validateQuestion(&question); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// ListQuestions returns a quiz's questions in insertion order for the owning
// teacher's authoring view.
func (s *CatalogService) ListQuestions(ctx context.Context, actor *model.User, quizID uint) ([]model.Question, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	res := Resource{CourseID: quiz.CourseID, OwnerID: quiz.CreatedByID}
	if err := s.authz.Authorize(ctx, actor, ActionManageQuiz, res).Err(); err != nil {
		return nil, err
	}

	var questions []model.Question
	err = s.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}

// DeleteCourse removes a course owned by actor together with its lessons,
// quizzes, questions, enrollments and queries.
func (s *CatalogService) DeleteCourse(ctx context.Context, actor *model.User, courseID uint) error {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return err
	}
	res := Resource{CourseID: course.ID, OwnerID: course.TeacherID}
	if err := s.authz.Authorize(ctx, actor, ActionManageCourse, res).Err(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&model.Quiz{}).
			Where("course_id = ?", courseID).
			Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if len(quizIDs) > 0 {
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&model.Question{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&model.Quiz{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&model.Query{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, courseID).Error
	})
}

func (s *CatalogService) getCourse(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("course")
		}
		return nil, err
	}
	return &course, nil
}

func (s *CatalogService) getQuiz(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("quiz")
		}
		return nil, err
	}
	return &quiz, nil
}

func validateQuestion(q *model.Question) error {
	var fields []FieldError
	if strings.TrimSpace(q.Text) == "" {
		fields = append(fields, FieldError{Field: "text", Error: "question text is required"})
	}
	if strings.TrimSpace(q.OptionA) == "" {
		fields = append(fields, FieldError{Field: "option_a", Error: "option A is required"})
	}
	if strings.TrimSpace(q.OptionB) == "" {
		fields = append(fields, FieldError{Field: "option_b", Error: "option B is required"})
	}
	switch q.CorrectOption {
	case model.OptionA, model.OptionB, model.OptionC, model.OptionD:
		if strings.TrimSpace(q.OptionText(q.CorrectOption)) == "" {
			fields = append(fields, FieldError{
				Field: "correct_option",
				Error: "correct option must reference a non-blank option",
			})
		}
	default:
		fields = append(fields, FieldError{
			Field: "correct_option",
			Error: "correct option must be one of A, B, C, D",
		})
	}
	if len(fields) > 0 {
		return NewValidationError(errors.New("invalid question"), fields...)
	}
	return nil
}

// ownerIDFor lets creation-time checks pass the ownership rule: a new resource
// is owned by its creator.
func ownerIDFor(actor *model.User) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}
