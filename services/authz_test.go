package services

import (
	"testing"

	"github.com/campuslane/lms-api/model"
)

func TestAuthorizeBrowseCatalogIsPublic(t *testing.T) {
	db := newTestDB(t)
	authz := NewAuthorizer(db)

	if d := authz.Authorize(ctx(), nil, ActionBrowseCatalog, Resource{}); !d.Allowed {
		t.Fatalf("anonymous catalog browsing denied: %s", d.Reason)
	}
}

func TestAuthorizeNilUserDeniedEverywhereElse(t *testing.T) {
	db := newTestDB(t)
	authz := NewAuthorizer(db)

	actions := []Action{
		ActionManageCourse, ActionManageQuiz, ActionViewLesson, ActionAttemptQuiz,
		ActionEnroll, ActionViewStudentDashboard, ActionViewTeacherDashboard,
		ActionCreateQuery, ActionUpdateQueryStaff,
	}
	for _, action := range actions {
		if d := authz.Authorize(ctx(), nil, action, Resource{}); d.Allowed {
			t.Errorf("nil user permitted for %s", action)
		}
	}
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	db := newTestDB(t)
	authz := NewAuthorizer(db)

	teacher := newUser(t, db, model.RoleTeacher)
	otherTeacher := newUser(t, db, model.RoleTeacher)
	ta := newUser(t, db, model.RoleTA)
	student := newUser(t, db, model.RoleStudent)
	admin := newUser(t, db, model.RoleAdmin)

	course := newCourse(t, db, teacher)
	mustEnroll(t, db, student, course.ID)
	outsider := newUser(t, db, model.RoleStudent)

	owned := Resource{CourseID: course.ID, OwnerID: teacher.ID}

	tests := []struct {
		name    string
		user    *model.User
		action  Action
		res     Resource
		allowed bool
	}{
		{"teacher manages own course", teacher, ActionManageCourse, owned, true},
		{"teacher cannot manage another teacher's course", otherTeacher, ActionManageCourse, owned, false},
		{"student cannot manage courses", student, ActionManageCourse, owned, false},
		{"ta cannot manage courses", ta, ActionManageCourse, owned, false},

		{"quiz creator manages quiz", teacher, ActionManageQuiz, owned, true},
		{"other teacher cannot manage quiz", otherTeacher, ActionManageQuiz, owned, false},

		{"owning teacher views lesson", teacher, ActionViewLesson, owned, true},
		{"other teacher cannot view lesson", otherTeacher, ActionViewLesson, owned, false},
		{"enrolled student views lesson", student, ActionViewLesson, owned, true},
		{"unenrolled student cannot view lesson", outsider, ActionViewLesson, owned, false},
		{"ta cannot view lesson", ta, ActionViewLesson, owned, false},
		{"admin cannot view lesson", admin, ActionViewLesson, owned, false},

		{"enrolled student attempts quiz", student, ActionAttemptQuiz, owned, true},
		{"unenrolled student cannot attempt quiz", outsider, ActionAttemptQuiz, owned, false},
		{"teacher cannot attempt quiz", teacher, ActionAttemptQuiz, owned, false},

		{"student enrolls", outsider, ActionEnroll, Resource{CourseID: course.ID}, true},
		{"teacher cannot enroll", teacher, ActionEnroll, Resource{CourseID: course.ID}, false},

		{"student dashboard for students", student, ActionViewStudentDashboard, Resource{}, true},
		{"student dashboard denied for teacher", teacher, ActionViewStudentDashboard, Resource{}, false},
		{"teacher dashboard for teachers", teacher, ActionViewTeacherDashboard, Resource{}, true},
		{"teacher dashboard denied for ta", ta, ActionViewTeacherDashboard, Resource{}, false},

		{"student creates query", student, ActionCreateQuery, Resource{}, true},
		{"teacher cannot create query", teacher, ActionCreateQuery, Resource{}, false},

		{"teacher updates queries", teacher, ActionUpdateQueryStaff, Resource{}, true},
		{"ta updates queries", ta, ActionUpdateQueryStaff, Resource{}, true},
		{"student cannot update queries as staff", student, ActionUpdateQueryStaff, Resource{}, false},
		{"admin cannot update queries as staff", admin, ActionUpdateQueryStaff, Resource{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := authz.Authorize(ctx(), tt.user, tt.action, tt.res)
			if d.Allowed != tt.allowed {
				t.Fatalf("allowed = %v, want %v (reason %q)", d.Allowed, tt.allowed, d.Reason)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatal("deny carries no reason")
			}
		})
	}
}

func TestDecisionErr(t *testing.T) {
	if err := permit().Err(); err != nil {
		t.Fatalf("permit produced error: %v", err)
	}

	err := deny("teachers only").Err()
	if err == nil {
		t.Fatal("deny produced nil error")
	}
	if !IsAuthorization(err) {
		t.Fatalf("deny error is not an AuthorizationError: %v", err)
	}
	if got := err.Error(); got != "access denied: teachers only" {
		t.Fatalf("unexpected error text %q", got)
	}
}
