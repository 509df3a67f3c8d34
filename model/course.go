package model

import (
	"time"

	"gorm.io/datatypes"
)

// Course is owned by exactly one teacher and is never reassigned. Deleting a
// course removes its lessons, quizzes, enrollments and queries.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`

	// Relationships
	Teacher     User         `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Lessons     []Lesson     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Quizzes     []Quiz       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"quizzes,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// Lesson belongs to a course. Display ordering is ascending by Order with ties
// resolved by insertion (id). Up to two optional video attachments are stored
// as opaque URLs into object storage.
type Lesson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CourseID  uint      `gorm:"not null;index" json:"course_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Order     int       `gorm:"not null;default:1" json:"order"`
	Video1URL string    `json:"video_1_url,omitempty"`
	Video2URL string    `json:"video_2_url,omitempty"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// Enrollment links a student to a course. The (student, course) pair is unique
// at the storage layer; enrollment creation is an atomic get-or-create on it.
type Enrollment struct {
	ID               uint                      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time                 `json:"enrolled_on"`
	UpdatedAt        time.Time                 `json:"-"`
	StudentID        uint                      `gorm:"not null;uniqueIndex:idx_enrollments_student_course" json:"student_id"`
	CourseID         uint                      `gorm:"not null;uniqueIndex:idx_enrollments_student_course" json:"course_id"`
	CompletedLessons datatypes.JSONSlice[uint] `json:"completed_lessons"`
	Completed        bool                      `gorm:"default:false" json:"completed"`

	// Relationships
	Student User   `gorm:"foreignKey:StudentID" json:"-"`
	Course  Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// HasCompletedLesson reports whether lessonID is in the completed set.
func (e *Enrollment) HasCompletedLesson(lessonID uint) bool {
	for _, id := range e.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// Quiz belongs to a course and is authored by the course teacher.
type Quiz struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	CourseID         uint      `gorm:"not null;index" json:"course_id"`
	Title            string    `gorm:"not null" json:"title"`
	CreatedByID      uint      `gorm:"not null;index" json:"created_by_id"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`

	// Relationships
	Course    Course     `gorm:"foreignKey:CourseID" json:"-"`
	CreatedBy User       `gorm:"foreignKey:CreatedByID" json:"-"`
	Questions []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// Question options. C and D may be left blank; CorrectOption must reference a
// non-blank option.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// Question is a four-option multiple choice question of a quiz.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
	QuizID        uint      `gorm:"not null;index" json:"quiz_id"`
	Text          string    `gorm:"type:varchar(500);not null" json:"text"`
	OptionA       string    `gorm:"not null" json:"option_a"`
	OptionB       string    `gorm:"not null" json:"option_b"`
	OptionC       string    `json:"option_c,omitempty"`
	OptionD       string    `json:"option_d,omitempty"`
	CorrectOption string    `gorm:"type:varchar(1);not null" json:"-"`

	// Relationships
	Quiz Quiz `gorm:"foreignKey:QuizID" json:"-"`
}

// OptionText returns the option text for a single-letter marker, or "" for an
// unknown marker.
func (q *Question) OptionText(marker string) string {
	switch marker {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}
