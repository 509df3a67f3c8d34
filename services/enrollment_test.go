package services

import (
	"testing"

	"github.com/campuslane/lms-api/model"
)

func TestEnrollIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	student := newUser(t, db, model.RoleStudent)

	first, already, err := svc.Enroll(ctx(), student, course.ID)
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if already {
		t.Fatal("first enroll reported as existing")
	}

	second, already, err := svc.Enroll(ctx(), student, course.ID)
	if err != nil {
		t.Fatalf("second enroll: %v", err)
	}
	if !already {
		t.Fatal("second enroll not reported as existing")
	}
	if second.ID != first.ID {
		t.Fatalf("second enroll returned row %d, want %d", second.ID, first.ID)
	}

	var count int64
	db.Model(&model.Enrollment{}).Count(&count)
	if count != 1 {
		t.Fatalf("enrollment rows = %d, want 1", count)
	}
}

func TestEnrollGating(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)

	if _, _, err := svc.Enroll(ctx(), teacher, course.ID); !IsAuthorization(err) {
		t.Fatalf("teacher enroll error = %v, want authorization error", err)
	}

	student := newUser(t, db, model.RoleStudent)
	if _, _, err := svc.Enroll(ctx(), student, 9999); !IsNotFound(err) {
		t.Fatalf("missing course error = %v, want not found", err)
	}
}

func TestStudentDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	courseA := newCourse(t, db, teacher)
	newCourse(t, db, teacher)

	student := newUser(t, db, model.RoleStudent)
	mustEnroll(t, db, student, courseA.ID)

	dashboard, err := svc.Dashboard(ctx(), student)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dashboard.Courses) != 2 {
		t.Fatalf("catalog size = %d, want 2", len(dashboard.Courses))
	}
	if len(dashboard.EnrolledIDs) != 1 || dashboard.EnrolledIDs[0] != courseA.ID {
		t.Fatalf("enrolled ids = %v, want [%d]", dashboard.EnrolledIDs, courseA.ID)
	}

	if _, err := svc.Dashboard(ctx(), teacher); !IsAuthorization(err) {
		t.Fatalf("teacher on student dashboard error = %v, want authorization error", err)
	}
}

func TestListEnrollmentsPreloadsCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	student := newUser(t, db, model.RoleStudent)
	mustEnroll(t, db, student, course.ID)

	enrollments, err := svc.ListEnrollments(ctx(), student)
	if err != nil {
		t.Fatalf("list enrollments: %v", err)
	}
	if len(enrollments) != 1 {
		t.Fatalf("enrollments = %d, want 1", len(enrollments))
	}
	if enrollments[0].Course.ID != course.ID {
		t.Fatal("course not preloaded")
	}
}

func TestCompleteLessonProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	l1 := newLesson(t, db, course.ID, "L1", 1)
	l2 := newLesson(t, db, course.ID, "L2", 2)

	student := newUser(t, db, model.RoleStudent)
	mustEnroll(t, db, student, course.ID)

	enrollment, err := svc.CompleteLesson(ctx(), student, course.ID, l1.ID)
	if err != nil {
		t.Fatalf("complete first lesson: %v", err)
	}
	if enrollment.Completed {
		t.Fatal("course marked complete after one of two lessons")
	}
	if !enrollment.HasCompletedLesson(l1.ID) {
		t.Fatal("first lesson not recorded")
	}

	// Re-completing is a no-op.
	enrollment, err = svc.CompleteLesson(ctx(), student, course.ID, l1.ID)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if len(enrollment.CompletedLessons) != 1 {
		t.Fatalf("completed set = %v, want single entry", enrollment.CompletedLessons)
	}

	enrollment, err = svc.CompleteLesson(ctx(), student, course.ID, l2.ID)
	if err != nil {
		t.Fatalf("complete second lesson: %v", err)
	}
	if !enrollment.Completed {
		t.Fatal("course not marked complete after all lessons")
	}
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	lesson := newLesson(t, db, course.ID, "L1", 1)

	student := newUser(t, db, model.RoleStudent)
	if _, err := svc.CompleteLesson(ctx(), student, course.ID, lesson.ID); !IsAuthorization(err) {
		t.Fatalf("unenrolled completion error = %v, want authorization error", err)
	}

	mustEnroll(t, db, student, course.ID)
	if _, err := svc.CompleteLesson(ctx(), student, course.ID, 9999); !IsNotFound(err) {
		t.Fatalf("missing lesson error = %v, want not found", err)
	}
}
