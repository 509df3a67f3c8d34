package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/campuslane/lms-api/model"
	"github.com/campuslane/lms-api/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// RunSeeds runs all seed functions against db
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}

// SeedAll runs all seed functions. Every seed is idempotent.
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedRoleAccounts(); err != nil {
		return fmt.Errorf("failed to seed role accounts: %w", err)
	}

	if err := s.SeedDemoCourse(); err != nil {
		return fmt.Errorf("failed to seed demo course: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedRoleAccounts creates one account per role: the admin plus demo
// teacher/TA/student accounts for local development.
func (s *Seeder) SeedRoleAccounts() error {
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme123"
	}

	accounts := []struct {
		email string
		name  string
		role  string
	}{
		{"admin@campuslane.dev", "Administrator", model.RoleAdmin},
		{"teacher@campuslane.dev", "Demo Teacher", model.RoleTeacher},
		{"ta@campuslane.dev", "Demo TA", model.RoleTA},
		{"student@campuslane.dev", "Demo Student", model.RoleStudent},
	}

	for _, a := range accounts {
		var count int64
		if err := s.db.Model(&model.User{}).Where("email = ?", a.email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return err
		}
		user := model.User{
			Email:        a.email,
			PasswordHash: hash,
			Name:         a.name,
			Role:         a.role,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("Seeded %s account: %s", a.role, a.email)
	}

	return nil
}

// SeedDemoCourse creates a small demo course with lessons and a quiz, owned by
// the demo teacher.
func (s *Seeder) SeedDemoCourse() error {
	var teacher model.User
	if err := s.db.Where("email = ?", "teacher@campuslane.dev").First(&teacher).Error; err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&model.Course{}).Where("teacher_id = ?", teacher.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	course := model.Course{
		Title:       "Introduction to Go",
		Description: "Syntax, tooling and the standard library.",
		TeacherID:   teacher.ID,
	}
	if err := s.db.Create(&course).Error; err != nil {
		return err
	}

	lessons := []model.Lesson{
		{CourseID: course.ID, Title: "Getting Started", Content: "Installing the toolchain.", Order: 1},
		{CourseID: course.ID, Title: "Types and Structs", Content: "Value semantics.", Order: 2},
	}
	if err := s.db.Create(&lessons).Error; err != nil {
		return err
	}

	quiz := model.Quiz{
		CourseID:    course.ID,
		Title:       "Basics Check",
		CreatedByID: teacher.ID,
	}
	if err := s.db.Create(&quiz).Error; err != nil {
		return err
	}

	questions := []model.Question{
		{
			QuizID:        quiz.ID,
			Text:          "Which keyword declares a new variable with inferred type?",
			OptionA:       "var",
			OptionB:       ":=",
			OptionC:       "let",
			OptionD:       "def",
			CorrectOption: model.OptionB,
		},
		{
			QuizID:        quiz.ID,
			Text:          "Which builtin grows a slice?",
			OptionA:       "append",
			OptionB:       "push",
			OptionC:       "add",
			OptionD:       "insert",
			CorrectOption: model.OptionA,
		},
	}
	if err := s.db.Create(&questions).Error; err != nil {
		return err
	}

	log.Printf("Seeded demo course %q with %d lessons and 1 quiz", course.Title, len(lessons))
	return nil
}
