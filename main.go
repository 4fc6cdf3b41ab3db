package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Ilay3/UchetNZP-sub000/cmd"
	"github.com/Ilay3/UchetNZP-sub000/internal/container"
	"github.com/Ilay3/UchetNZP-sub000/internal/core/logger"
	"github.com/Ilay3/UchetNZP-sub000/internal/database"
	"github.com/Ilay3/UchetNZP-sub000/internal/middleware"
	"github.com/Ilay3/UchetNZP-sub000/internal/rate_limiter"
	"github.com/Ilay3/UchetNZP-sub000/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	if len(os.Args) > 1 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cmd.Execute(ctx)
		os.Exit(0)
	}
}

func main() {
	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		zapLogger.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		zapLogger.Fatal("failed to connect to the database: " + err.Error())
	}
	defer db.Close()

	zapLogger.Info("connected to the database")

	appContainer := container.NewAppContainer(db, zapLogger)

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))
	router.Use(rate_limiter.NewRateLimiter(100, time.Minute).Middleware())

	routes.RegisterAPIRoutes(router, appContainer)
	routes.RegisterUtilityRoutes(router)

	host := os.Getenv("APP_HOST")
	if host == "" {
		host = ":8080"
	}
	if err := router.Run(host); err != nil {
		zapLogger.Fatal("server stopped: " + err.Error())
	}
}
