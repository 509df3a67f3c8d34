package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuslane/lms-api/model"
)

// Action identifies an operation submitted to the authorization gate.
type Action string

const (
	ActionBrowseCatalog        Action = "browse_catalog"
	ActionManageCourse         Action = "manage_course"
	ActionManageQuiz           Action = "manage_quiz"
	ActionViewLesson           Action = "view_lesson"
	ActionAttemptQuiz          Action = "attempt_quiz"
	ActionEnroll               Action = "enroll"
	ActionViewStudentDashboard Action = "view_student_dashboard"
	ActionViewTeacherDashboard Action = "view_teacher_dashboard"
	ActionCreateQuery          Action = "create_query"
	ActionUpdateQueryStaff     Action = "update_query_staff"
)

// Resource carries the ownership/scoping facts the gate needs about the target
// of an action. CourseID scopes enrollment checks; OwnerID is the authoring
// identity of the resource (course teacher or quiz creator).
type Resource struct {
	CourseID uint
	OwnerID  uint
}

// Decision is the gate's answer. A deny carries the user-visible reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func permit() Decision            { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Err converts a deny into an AuthorizationError, nil on permit.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return NewAuthorizationError(d.Reason)
}

// Authorizer is the single policy point consulted by every service operation.
// Rules are evaluated as a priority list, first match wins; absence of a
// matching permit rule is a deny.
type Authorizer struct {
	db *gorm.DB
}

func NewAuthorizer(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// Authorize decides whether user may perform action on res. user may be nil
// for unauthenticated requests; only public catalog browsing survives that.
func (a *Authorizer) Authorize(ctx context.Context, user *model.User, action Action, res Resource) Decision {
	// Public catalog browsing needs no identity.
	if action == ActionBrowseCatalog {
		return permit()
	}

	if user == nil {
		return deny("authentication required")
	}

	switch action {
	case ActionManageCourse:
		if user.Role != model.RoleTeacher {
			return deny("teachers only")
		}
		if res.OwnerID != user.ID {
			return deny("not your course")
		}
		return permit()

	case ActionManageQuiz:
		if user.Role != model.RoleTeacher {
			return deny("teachers only")
		}
		if res.OwnerID != user.ID {
			return deny("not your quiz")
		}
		return permit()

	case ActionViewLesson:
		// The owning teacher reads their own course content; students need an
		// enrollment on the lesson's course.
		if user.Role == model.RoleTeacher {
			if res.OwnerID != user.ID {
				return deny("not your course")
			}
			return permit()
		}
		if user.Role == model.RoleStudent {
			if !a.isEnrolled(ctx, user.ID, res.CourseID) {
				return deny("you must enroll to view this lesson")
			}
			return permit()
		}
		return deny("not permitted")

	case ActionAttemptQuiz:
		if user.Role != model.RoleStudent || !a.isEnrolled(ctx, user.ID, res.CourseID) {
			return deny("you must be an enrolled student to attempt this quiz")
		}
		return permit()

	case ActionEnroll:
		if user.Role != model.RoleStudent {
			return deny("only students can enroll")
		}
		return permit()

	case ActionViewStudentDashboard:
		if user.Role != model.RoleStudent {
			return deny("students only")
		}
		return permit()

	case ActionViewTeacherDashboard:
		if user.Role != model.RoleTeacher {
			return deny("teachers only")
		}
		return permit()

	case ActionCreateQuery:
		if user.Role != model.RoleStudent {
			return deny("only students can create queries")
		}
		return permit()

	case ActionUpdateQueryStaff:
		if !user.IsStaff() {
			return deny("staff only")
		}
		return permit()
	}

	return deny("not permitted")
}

func (a *Authorizer) isEnrolled(ctx context.Context, studentID, courseID uint) bool {
	var count int64
	a.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count)
	return count > 0
}
