package services

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campuslane/lms-api/model"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A single connection keeps every session on the same :memory: database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.JWTTokenBlacklist{},
		&model.Course{},
		&model.Lesson{},
		&model.Quiz{},
		&model.Question{},
		&model.Enrollment{},
		&model.Query{},
		&model.CronJobLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

var userSeq int

func newUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()
	userSeq++
	user := model.User{
		Email:        fmt.Sprintf("user%d@test.local", userSeq),
		PasswordHash: "x",
		Name:         fmt.Sprintf("User %d", userSeq),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func newCourse(t *testing.T, db *gorm.DB, teacher *model.User) *model.Course {
	t.Helper()
	course := model.Course{
		Title:       "Test Course",
		Description: "desc",
		TeacherID:   teacher.ID,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return &course
}

func newLesson(t *testing.T, db *gorm.DB, courseID uint, title string, order int) *model.Lesson {
	t.Helper()
	lesson := model.Lesson{
		CourseID: courseID,
		Title:    title,
		Content:  "content",
		Order:    order,
	}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return &lesson
}

func newQuiz(t *testing.T, db *gorm.DB, courseID, createdByID uint) *model.Quiz {
	t.Helper()
	quiz := model.Quiz{
		CourseID:    courseID,
		Title:       "Test Quiz",
		CreatedByID: createdByID,
	}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return &quiz
}

func newQuestion(t *testing.T, db *gorm.DB, quizID uint, correct string) *model.Question {
	t.Helper()
	question := model.Question{
		QuizID:        quizID,
		Text:          "What is the answer?",
		OptionA:       "first",
		OptionB:       "second",
		OptionC:       "third",
		OptionD:       "fourth",
		CorrectOption: correct,
	}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return &question
}

func mustEnroll(t *testing.T, db *gorm.DB, student *model.User, courseID uint) *model.Enrollment {
	t.Helper()
	enrollment := model.Enrollment{StudentID: student.ID, CourseID: courseID}
	if err := db.Create(&enrollment).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	return &enrollment
}

func ctx() context.Context {
	return context.Background()
}
