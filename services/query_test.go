package services

import (
	"strings"
	"testing"

	"github.com/campuslane/lms-api/model"
)

func TestCreateQuery(t *testing.T) {
	db := newTestDB(t)
	svc := NewQueryService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	lesson := newLesson(t, db, course.ID, "L1", 1)
	student := newUser(t, db, model.RoleStudent)

	query, err := svc.Create(ctx(), student, CreateQueryInput{
		Title:       "Confused about slices",
		Description: "Lesson 1 example does not compile",
		CourseID:    course.ID,
		LessonID:    &lesson.ID,
	})
	if err != nil {
		t.Fatalf("create query: %v", err)
	}
	if query.Status != model.QueryStatusOpen {
		t.Fatalf("new query status = %q, want %q", query.Status, model.QueryStatusOpen)
	}
	if query.AssignedToID != nil {
		t.Fatal("new query already assigned")
	}

	if _, err := svc.Create(ctx(), teacher, CreateQueryInput{Title: "t", Description: "d", CourseID: course.ID}); !IsAuthorization(err) {
		t.Fatalf("teacher create error = %v, want authorization error", err)
	}

	if _, err := svc.Create(ctx(), student, CreateQueryInput{Description: "d", CourseID: course.ID}); err == nil {
		t.Fatal("blank title accepted")
	}

	if _, err := svc.Create(ctx(), student, CreateQueryInput{Title: "t", Description: "d", CourseID: 9999}); !IsNotFound(err) {
		t.Fatalf("missing course error = %v, want not found", err)
	}

	// Lesson of another course is rejected.
	other := newCourse(t, db, teacher)
	otherLesson := newLesson(t, db, other.ID, "X", 1)
	_, err = svc.Create(ctx(), student, CreateQueryInput{
		Title:       "t",
		Description: "d",
		CourseID:    course.ID,
		LessonID:    &otherLesson.ID,
	})
	if _, ok := IsValidation(err); !ok {
		t.Fatalf("cross-course lesson error = %v, want validation error", err)
	}
}

func TestStaffUpdateClaimsAndSetsStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewQueryService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	student := newUser(t, db, model.RoleStudent)
	ta := newUser(t, db, model.RoleTA)

	query, err := svc.Create(ctx(), student, CreateQueryInput{
		Title: "Help", Description: "d", CourseID: course.ID,
	})
	if err != nil {
		t.Fatalf("create query: %v", err)
	}

	updated, err := svc.StaffUpdate(ctx(), ta, query.ID, "Working on it", model.QueryStatusInProgress)
	if err != nil {
		t.Fatalf("staff update: %v", err)
	}
	if updated.Response != "Working on it" || updated.Status != model.QueryStatusInProgress {
		t.Fatalf("updated query = %+v", updated)
	}
	if updated.AssignedToID == nil || *updated.AssignedToID != ta.ID {
		t.Fatal("unassigned query not claimed by responder")
	}

	// A second responder does not steal the assignment.
	updated, err = svc.StaffUpdate(ctx(), teacher, query.ID, "Done", model.QueryStatusResolved)
	if err != nil {
		t.Fatalf("second staff update: %v", err)
	}
	if *updated.AssignedToID != ta.ID {
		t.Fatal("assignment changed on later update")
	}

	// Staff may move a resolved ticket back to any status.
	updated, err = svc.StaffUpdate(ctx(), ta, query.ID, "Reopening", model.QueryStatusOpen)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if updated.Status != model.QueryStatusOpen {
		t.Fatalf("status = %q, want %q", updated.Status, model.QueryStatusOpen)
	}

	if _, err := svc.StaffUpdate(ctx(), ta, query.ID, "x", "Nonsense"); err == nil {
		t.Fatal("invalid status accepted")
	}

	if _, err := svc.StaffUpdate(ctx(), student, query.ID, "x", model.QueryStatusOpen); !IsAuthorization(err) {
		t.Fatalf("student staff-update error = %v, want authorization error", err)
	}
}

func TestStudentReplyAppendsAndForcesInProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewQueryService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	student := newUser(t, db, model.RoleStudent)

	query, err := svc.Create(ctx(), student, CreateQueryInput{
		Title: "Help", Description: "d", CourseID: course.ID,
	})
	if err != nil {
		t.Fatalf("create query: %v", err)
	}

	if _, err := svc.StaffUpdate(ctx(), teacher, query.ID, "Try restarting", model.QueryStatusResolved); err != nil {
		t.Fatalf("staff resolve: %v", err)
	}

	// A reply reopens the conversation even from Resolved.
	updated, changed, err := svc.StudentAct(ctx(), student, query.ID, QueryActionReply, "Still broken")
	if err != nil {
		t.Fatalf("student reply: %v", err)
	}
	if !changed {
		t.Fatal("reply reported as no-op")
	}
	if updated.Status != model.QueryStatusInProgress {
		t.Fatalf("status after reply = %q, want %q", updated.Status, model.QueryStatusInProgress)
	}
	want := "Try restarting\n\n[Student Reply]: Still broken"
	if updated.Response != want {
		t.Fatalf("response = %q, want %q", updated.Response, want)
	}

	// A second reply appends after the first.
	updated, _, err = svc.StudentAct(ctx(), student, query.ID, QueryActionReply, "Any news?")
	if err != nil {
		t.Fatalf("second reply: %v", err)
	}
	if !strings.HasSuffix(updated.Response, "[Student Reply]: Any news?") {
		t.Fatalf("second reply not appended: %q", updated.Response)
	}
	if strings.Count(updated.Response, "[Student Reply]:") != 2 {
		t.Fatalf("reply markers = %d, want 2", strings.Count(updated.Response, "[Student Reply]:"))
	}
}

func TestStudentActNoOpsAndResolve(t *testing.T) {
	db := newTestDB(t)
	svc := NewQueryService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	student := newUser(t, db, model.RoleStudent)

	query, err := svc.Create(ctx(), student, CreateQueryInput{
		Title: "Help", Description: "d", CourseID: course.ID,
	})
	if err != nil {
		t.Fatalf("create query: %v", err)
	}

	// Empty reply body changes nothing and still succeeds.
	got, changed, err := svc.StudentAct(ctx(), student, query.ID, QueryActionReply, "   ")
	if err != nil {
		t.Fatalf("empty reply: %v", err)
	}
	if changed {
		t.Fatal("empty reply reported as change")
	}
	if got.Status != model.QueryStatusOpen || got.Response != "" {
		t.Fatalf("empty reply mutated query: %+v", got)
	}

	// Unknown action is the same no-op.
	if _, changed, err = svc.StudentAct(ctx(), student, query.ID, "escalate", ""); err != nil || changed {
		t.Fatalf("unknown action: changed=%v err=%v", changed, err)
	}

	// Resolve forces the status without touching the response.
	got, changed, err = svc.StudentAct(ctx(), student, query.ID, QueryActionResolve, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !changed || got.Status != model.QueryStatusResolved {
		t.Fatalf("resolve outcome: changed=%v status=%q", changed, got.Status)
	}

	// Only the creator may act.
	other := newUser(t, db, model.RoleStudent)
	if _, _, err := svc.StudentAct(ctx(), other, query.ID, QueryActionResolve, ""); !IsAuthorization(err) {
		t.Fatalf("foreign student error = %v, want authorization error", err)
	}
	if _, _, err := svc.StudentAct(ctx(), teacher, query.ID, QueryActionResolve, ""); !IsAuthorization(err) {
		t.Fatalf("teacher student-action error = %v, want authorization error", err)
	}
}

func TestListVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewQueryService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	ta := newUser(t, db, model.RoleTA)
	course := newCourse(t, db, teacher)
	alice := newUser(t, db, model.RoleStudent)
	bob := newUser(t, db, model.RoleStudent)

	aliceQuery, err := svc.Create(ctx(), alice, CreateQueryInput{Title: "a", Description: "d", CourseID: course.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	bobQuery, err := svc.Create(ctx(), bob, CreateQueryInput{Title: "b", Description: "d", CourseID: course.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Students only see their own queries.
	visible, err := svc.List(ctx(), alice)
	if err != nil {
		t.Fatalf("student list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != aliceQuery.ID {
		t.Fatalf("alice sees %+v", visible)
	}

	// Staff see every open ticket.
	visible, err = svc.List(ctx(), ta)
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("staff sees %d open tickets, want 2", len(visible))
	}

	// Once assigned and no longer open, a ticket stays visible only to its
	// assignee. The teacher claims Bob's ticket.
	if _, err := svc.StaffUpdate(ctx(), teacher, bobQuery.ID, "on it", model.QueryStatusInProgress); err != nil {
		t.Fatalf("claim: %v", err)
	}

	visible, err = svc.List(ctx(), ta)
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != aliceQuery.ID {
		t.Fatalf("ta sees %+v, want only the open ticket", visible)
	}

	visible, err = svc.List(ctx(), teacher)
	if err != nil {
		t.Fatalf("assignee list: %v", err)
	}
	// Teacher sees their assigned ticket plus the remaining open one, with no
	// duplicates.
	if len(visible) != 2 {
		t.Fatalf("assignee sees %d tickets, want 2", len(visible))
	}

	if _, err := svc.List(ctx(), nil); !IsAuthorization(err) {
		t.Fatalf("anonymous list error = %v, want authorization error", err)
	}
}

func TestGetQueryAnyAuthenticated(t *testing.T) {
	db := newTestDB(t)
	svc := NewQueryService(db, NewAuthorizer(db))

	teacher := newUser(t, db, model.RoleTeacher)
	course := newCourse(t, db, teacher)
	student := newUser(t, db, model.RoleStudent)

	query, err := svc.Create(ctx(), student, CreateQueryInput{Title: "a", Description: "d", CourseID: course.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx(), teacher, query.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Course.ID != course.ID {
		t.Fatal("course not preloaded")
	}

	if _, err := svc.Get(ctx(), nil, query.ID); !IsAuthorization(err) {
		t.Fatalf("anonymous get error = %v, want authorization error", err)
	}
	if _, err := svc.Get(ctx(), student, 9999); !IsNotFound(err) {
		t.Fatalf("missing query error = %v, want not found", err)
	}
}
