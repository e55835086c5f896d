package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codecrackers/configs"
	"codecrackers/internal/cache"
	"codecrackers/internal/dbs"
	"codecrackers/internal/handlers"
	"codecrackers/internal/logger"
	"codecrackers/internal/middlewares"
	"codecrackers/internal/repositories"
	"codecrackers/internal/services"
	"codecrackers/internal/workerpool"

	"github.com/gin-gonic/gin"
)

func StartGinServer() {
	logger.InitLogger()
	defer logger.SyncLogger()

	config := configs.LoadConfig()

	db, err := dbs.Init(config)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := dbs.InitRedis(ctx, config); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer dbs.CloseRedis()

	store := cache.New(dbs.RedisClient)

	contestRepo := repositories.NewContestRepository(db)
	problemRepo := repositories.NewProblemRepository(db, store)
	submissionRepo := repositories.NewSubmissionRepository(db)
	userRepo := repositories.NewUserRepository(db, store)
	telemetryRepo := repositories.NewTelemetryRepository(db)

	sandbox := services.NewSandboxClient(
		config.SandboxURL,
		time.Duration(config.SandboxTimeoutSeconds)*time.Second,
	)
	judge := services.NewJudgeService(sandbox)
	grading := services.NewGradingService(
		contestRepo, problemRepo, submissionRepo, userRepo,
		judge, config.ScoreAwardPoints,
	)

	telemetry := services.NewTelemetryService(telemetryRepo, config.TelemetryBufferSize)
	telemetry.Start(ctx)

	pool := workerpool.NewGradingWorkerPool(
		config.NumberOfWorkers,
		dbs.RedisClient,
		config.SubmissionStream,
		config.SubmissionGroup,
		grading,
	)
	if err := pool.Start(ctx); err != nil {
		logger.Log.Error("Failed starting worker pool")
		log.Fatalf("failed to start worker pool: %v", err)
	}

	tokenService := services.NewTokenService(config.JWTSecret)
	auth := middlewares.AuthMiddleware(tokenService)
	admin := middlewares.AdminMiddleware()

	router := gin.New()
	router.Use(middlewares.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	handlers.NewProblemHandler(problemRepo).RegisterRoutes(router)
	handlers.NewLeaderboardHandler(userRepo).RegisterRoutes(router)
	handlers.NewSubmissionHandler(contestRepo, problemRepo, submissionRepo, dbs.RedisClient, config.SubmissionStream).RegisterRoutes(router, auth)
	handlers.NewRunHandler(sandbox).RegisterRoutes(router, auth)
	handlers.NewTelemetryHandler(telemetry).RegisterRoutes(router, auth)
	handlers.NewAdminHandler(contestRepo, userRepo, telemetry).RegisterRoutes(router, auth, admin)

	server := &http.Server{
		Addr:         ":" + config.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", config.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	pool.Stop()
	cancel()
	telemetry.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and workers stopped gracefully.")
}
