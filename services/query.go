package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/campuslane/lms-api/model"
)

// Student ticket actions. Anything else is a no-op.
const (
	QueryActionReply   = "reply"
	QueryActionResolve = "resolve"
)

// QueryService implements the help-desk ticket workflow: students file
// queries, staff respond and drive the status, students reply or resolve.
type QueryService struct {
	db    *gorm.DB
	authz *Authorizer
}

func NewQueryService(db *gorm.DB, authz *Authorizer) *QueryService {
	return &QueryService{db: db, authz: authz}
}

// CreateQueryInput carries a new student query. LessonID is optional.
type CreateQueryInput struct {
	Title       string
	Description string
	CourseID    uint
	LessonID    *uint
}

// Create files a new query in Open state on behalf of actor.
func (s *QueryService) Create(ctx context.Context, actor *model.User, in CreateQueryInput) (*model.Query, error) {
	if err := s.authz.Authorize(ctx, actor, ActionCreateQuery, Resource{}).Err(); err != nil {
		return nil, err
	}

	var fields []FieldError
	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Error: "title is required"})
	}
	if strings.TrimSpace(in.Description) == "" {
		fields = append(fields, FieldError{Field: "description", Error: "description is required"})
	}
	if len(fields) > 0 {
		return nil, NewValidationError(errors.New("invalid query"), fields...)
	}

	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, in.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("course")
		}
		return nil, err
	}

	if in.LessonID != nil {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&model.Lesson{}).
			Where("id = ? AND course_id = ?", *in.LessonID, in.CourseID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, NewValidationError(errors.New("invalid lesson"),
				FieldError{Field: "lesson_id", Error: "lesson does not belong to the course"})
		}
	}

	query := model.Query{
		Title:       in.Title,
		Description: in.Description,
		CourseID:    in.CourseID,
		LessonID:    in.LessonID,
		CreatedByID: actor.ID,
		Status:      model.QueryStatusOpen,
	}
	if err := s.db.WithContext(ctx).Create(&query).Error; err != nil {
		return nil, err
	}
	return &query, nil
}

// List returns the queries visible to actor: students see their own, staff see
// tickets assigned to them plus every Open ticket (deduplicated by the single
// OR filter), any other role sees all.
func (s *QueryService) List(ctx context.Context, actor *model.User) ([]model.Query, error) {
	if actor == nil {
		return nil, NewAuthorizationError("authentication required")
	}

	q := s.db.WithContext(ctx).
		Preload("Course").
		Order("created_at DESC")

	switch {
	case actor.Role == model.RoleStudent:
		q = q.Where("created_by_id = ?", actor.ID)
	case actor.IsStaff():
		q = q.Where("assigned_to_id = ? OR status = ?", actor.ID, model.QueryStatusOpen)
	}

	var queries []model.Query
	err := q.Find(&queries).Error
	return queries, err
}

// Get returns a single query for any authenticated user.
func (s *QueryService) Get(ctx context.Context, actor *model.User, id uint) (*model.Query, error) {
	if actor == nil {
		return nil, NewAuthorizationError("authentication required")
	}
	return s.get(ctx, id)
}

// StaffUpdate sets the response text and status of a query. Staff may pick any
// of the three statuses; there is no transition guard, so a Resolved ticket
// can be reopened. An unassigned ticket is claimed by the responding staff
// member.
func (s *QueryService) StaffUpdate(ctx context.Context, actor *model.User, id uint, response, status string) (*model.Query, error) {
	if err := s.authz.Authorize(ctx, actor, ActionUpdateQueryStaff, Resource{}).Err(); err != nil {
		return nil, err
	}

	query, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.IsValidQueryStatus(status) {
		return nil, NewValidationError(errors.New("invalid status"),
			FieldError{Field: "status", Error: "status must be Open, In Progress or Resolved"})
	}

	query.Response = response
	query.Status = status
	if query.AssignedToID == nil {
		query.AssignedToID = &actor.ID
	}
	if err := s.db.WithContext(ctx).Save(query).Error; err != nil {
		return nil, err
	}
	return query, nil
}

// StudentAct applies a student action to the student's own query.
//
//	reply (non-empty body): appends a formatted entry to the response text and
//	forces status to In Progress regardless of the prior status.
//	resolve: forces status to Resolved, response untouched.
//
// An empty reply body or an unrecognized action is a no-op: the ticket is
// unchanged and the call still succeeds with the current state
// (changed=false).
func (s *QueryService) StudentAct(ctx context.Context, actor *model.User, id uint, action, body string) (query *model.Query, changed bool, err error) {
	if actor == nil {
		return nil, false, NewAuthorizationError("authentication required")
	}
	if actor.Role != model.RoleStudent {
		return nil, false, NewAuthorizationError("students only")
	}

	query, err = s.get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if query.CreatedByID != actor.ID {
		return nil, false, NewAuthorizationError("not your query")
	}

	switch {
	case action == QueryActionReply && strings.TrimSpace(body) != "":
		query.Response = query.Response + fmt.Sprintf("\n\n[Student Reply]: %s", body)
		query.Status = model.QueryStatusInProgress
	case action == QueryActionResolve:
		query.Status = model.QueryStatusResolved
	default:
		// Unrecognized action or empty reply: re-display current state.
		return query, false, nil
	}

	if err := s.db.WithContext(ctx).Save(query).Error; err != nil {
		return nil, false, err
	}
	return query, true, nil
}

func (s *QueryService) get(ctx context.Context, id uint) (*model.Query, error) {
	var query model.Query
	if err := s.db.WithContext(ctx).
		Preload("Course").
		First(&query, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("query")
		}
		return nil, err
	}
	return &query, nil
}
