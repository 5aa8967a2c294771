package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/auth"
	"github.com/taskforge-dev/taskforge/internal/rbac"
	"github.com/taskforge-dev/taskforge/internal/router"
	"github.com/taskforge-dev/taskforge/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	appLogger := logger.New(os.Getenv("LOG_LEVEL"))

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := rbac.Seed(db.DB, appLogger); err != nil {
		log.Fatalf("Failed to seed RBAC catalog: %v", err)
	}

	r := router.NewRouter(appLogger)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		appLogger.Info("PORT not set, defaulting to 3000")
	}

	appLogger.Info("starting server", "port", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
