package app

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/campuslane/lms-api/api"
	"github.com/campuslane/lms-api/config"
	"github.com/campuslane/lms-api/database"
	"github.com/campuslane/lms-api/router"
	"github.com/campuslane/lms-api/services/cron"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			cronManager = cron.NewCronManager(db)
			if err := cronManager.Start(); err != nil {
				// Don't fail the app, just log the warning
				print("Warning: Failed to start cron jobs: ", err.Error(), "\n")
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (includes security middleware)
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()
}
