package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Every account carries exactly one role; STUDENT is the default
// assigned at registration.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleTA      = "TA"
	RoleStudent = "STUDENT"
)

// ValidRoles lists every role accepted at registration.
var ValidRoles = []string{RoleAdmin, RoleTeacher, RoleTA, RoleStudent}

// User represents a registered account in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(10);not null;default:'STUDENT'" json:"role"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	CoursesTaught []Course     `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollments   []Enrollment `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsStaff reports whether the user may manage query tickets.
func (u *User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleTA
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if role == r {
			return true
		}
	}
	return false
}
