package model

import "time"

// Query ticket statuses. New tickets start Open. Staff may set any status,
// including reopening a Resolved ticket.
const (
	QueryStatusOpen       = "Open"
	QueryStatusInProgress = "In Progress"
	QueryStatusResolved   = "Resolved"
)

// IsValidQueryStatus reports whether status is one of the three ticket states.
func IsValidQueryStatus(status string) bool {
	switch status {
	case QueryStatusOpen, QueryStatusInProgress, QueryStatusResolved:
		return true
	}
	return false
}

// Query is a student-filed help request against a course, optionally pinned to
// a lesson. The lesson reference survives lesson deletion by falling back to
// null.
type Query struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"-"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	CourseID     uint      `gorm:"not null;index" json:"course_id"`
	LessonID     *uint     `gorm:"index" json:"lesson_id,omitempty"`
	CreatedByID  uint      `gorm:"not null;index" json:"created_by_id"`
	AssignedToID *uint     `gorm:"index" json:"assigned_to_id,omitempty"`
	Response     string    `gorm:"type:text" json:"response,omitempty"`
	Status       string    `gorm:"type:varchar(20);not null;default:'Open'" json:"status"`

	// Relationships
	Course     Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Lesson     *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:SET NULL" json:"lesson,omitempty"`
	CreatedBy  User    `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedTo *User   `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
}
