package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campuslane/lms-api/config"
	"github.com/campuslane/lms-api/database"
	"github.com/campuslane/lms-api/handlers"
	auth_handlers "github.com/campuslane/lms-api/handlers/auth"
	course_handlers "github.com/campuslane/lms-api/handlers/course"
	query_handlers "github.com/campuslane/lms-api/handlers/query"
	"github.com/campuslane/lms-api/services"
	"github.com/campuslane/lms-api/services/spaces"
	"github.com/campuslane/lms-api/utils/auth"
	"github.com/campuslane/lms-api/utils/cache"
	"github.com/campuslane/lms-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment configuration")
	}

	jwtSecret := getEnv.JWT_SECRET
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "campuslane-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis cache for brute force protection. Optional; login still works
	// without it.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage for lesson videos. Optional; uploads return 503 when
	// not configured.
	var spacesClient *spaces.Client
	if getEnv.SPACES_ACCESS_KEY != "" && getEnv.SPACES_SECRET_KEY != "" {
		spacesClient, err = spaces.NewClient(spaces.Config{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize Spaces client: %v. Video uploads will be disabled.", err)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	authorizer := services.NewAuthorizer(db)
	catalogService := services.NewCatalogService(db, authorizer)
	enrollmentService := services.NewEnrollmentService(db, authorizer)
	quizService := services.NewQuizService(db, authorizer)
	queryService := services.NewQueryService(db, authorizer)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(catalogService, enrollmentService, quizService, spacesClient)
	queryHandler := query_handlers.NewQueryHandler(queryService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Courses: the catalog is public, everything else requires auth. The
	// detail route attaches optional auth so enrollment status can be
	// flagged for signed-in students.
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", authMiddleware.Optional(), courseHandler.GetCourse)
	courses.Post("/", authMiddleware.Required(), courseHandler.CreateCourse)
	courses.Delete("/:id", authMiddleware.Required(), courseHandler.DeleteCourse)

	// Enrollment
	courses.Post("/:id/enroll", authMiddleware.Required(), courseHandler.Enroll)

	// Lessons (nested under courses)
	courses.Post("/:id/lessons", authMiddleware.Required(), courseHandler.CreateLesson)
	courses.Get("/:id/lessons/:lessonID", authMiddleware.Required(), courseHandler.GetLesson)
	courses.Post("/:id/lessons/:lessonID/complete", authMiddleware.Required(), courseHandler.CompleteLesson)

	// Quizzes
	courses.Post("/:id/quizzes", authMiddleware.Required(), courseHandler.CreateQuiz)

	quizzes := api.Group("/quizzes", authMiddleware.Required())
	quizzes.Post("/:id/questions", courseHandler.AddQuestion)
	quizzes.Get("/:id/questions", courseHandler.ListQuestions)
	quizzes.Get("/:id/attempt", courseHandler.GetQuizForAttempt)
	quizzes.Post("/:id/attempt", courseHandler.SubmitAttempt)

	// Dashboards
	api.Get("/student/dashboard", authMiddleware.Required(), courseHandler.StudentDashboard)
	api.Get("/student/courses", authMiddleware.Required(), courseHandler.MyCourses)
	api.Get("/teacher/courses", authMiddleware.Required(), courseHandler.TeacherDashboard)

	// Queries
	queries := api.Group("/queries", authMiddleware.Required())
	queries.Get("/", queryHandler.List)
	queries.Post("/", queryHandler.Create)
	queries.Get("/:id", queryHandler.Get)
	queries.Put("/:id/respond", queryHandler.StaffUpdate)
	queries.Post("/:id/action", queryHandler.StudentAction)
}
