package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/campuslane/lms-api/model"
)

// EnrollmentService tracks which students belong to which courses and their
// lesson completion state.
type EnrollmentService struct {
	db    *gorm.DB
	authz *Authorizer
}

func NewEnrollmentService(db *gorm.DB, authz *Authorizer) *EnrollmentService {
	return &EnrollmentService{db: db, authz: authz}
}

// Enroll links actor to a course. Idempotent: a second call returns the
// existing enrollment unchanged with already=true. Concurrent enrolls are
// resolved by the unique (student_id, course_id) index; the loser of the race
// re-reads the winner's row.
func (s *EnrollmentService) Enroll(ctx context.Context, actor *model.User, courseID uint) (enrollment *model.Enrollment, already bool, err error) {
	if err := s.authz.Authorize(ctx, actor, ActionEnroll, Resource{CourseID: courseID}).Err(); err != nil {
		return nil, false, err
	}

	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, NewNotFoundError("course")
		}
		return nil, false, err
	}

	var existing model.Enrollment
	err = s.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", actor.ID, courseID).
		First(&existing).Error
	if err == nil {
		return &existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := model.Enrollment{StudentID: actor.ID, CourseID: courseID}
	err = s.db.WithContext(ctx).Create(&created).Error
	if err == nil {
		return &created, false, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race; another request created the row first.
		if err := s.db.WithContext(ctx).
			Where("student_id = ? AND course_id = ?", actor.ID, courseID).
			First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, true, nil
	}
	return nil, false, err
}

// StudentDashboard is the student landing view: the full catalog (newest
// first) plus the ids of courses actor is enrolled in, for UI flagging.
type StudentDashboard struct {
	Courses     []model.Course `json:"courses"`
	EnrolledIDs []uint         `json:"enrolled_ids"`
}

// Dashboard returns the student dashboard for actor.
func (s *EnrollmentService) Dashboard(ctx context.Context, actor *model.User) (*StudentDashboard, error) {
	if err := s.authz.Authorize(ctx, actor, ActionViewStudentDashboard, Resource{}).Err(); err != nil {
		return nil, err
	}

	var courses []model.Course
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	var enrolledIDs []uint
	if err := s.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("student_id = ?", actor.ID).
		Pluck("course_id", &enrolledIDs).Error; err != nil {
		return nil, err
	}

	return &StudentDashboard{Courses: courses, EnrolledIDs: enrolledIDs}, nil
}

// ListEnrollments returns actor's enrollments with courses preloaded, for the
// student "my courses" view.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, actor *model.User) ([]model.Enrollment, error) {
	if err := s.authz.Authorize(ctx, actor, ActionViewStudentDashboard, Resource{}).Err(); err != nil {
		return nil, err
	}
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// CompleteLesson marks a lesson of the enrollment's course as completed by
// actor. The lesson must belong to the course. When every lesson of the course
// is completed the enrollment's completed flag is set.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, actor *model.User, courseID, lessonID uint) (*model.Enrollment, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("course")
		}
		return nil, err
	}

	res := Resource{CourseID: courseID, OwnerID: course.TeacherID}
	if err := s.authz.Authorize(ctx, actor, ActionViewLesson, res).Err(); err != nil {
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

	var enrollment model.Enrollment
	if err := s.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", actor.ID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("enrollment")
		}
		return nil, err
	}

	if enrollment.HasCompletedLesson(lessonID) {
		return &enrollment, nil
	}
	enrollment.CompletedLessons = append(enrollment.CompletedLessons, lessonID)

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	enrollment.Completed = int64(len(enrollment.CompletedLessons)) >= total

	if err := s.db.WithContext(ctx).Save(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}
