// Package main runs the caregiving events HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/carecircle/backend/config"
	"github.com/carecircle/backend/internal/analytics"
	"github.com/carecircle/backend/internal/auth"
	"github.com/carecircle/backend/internal/caregivers"
	"github.com/carecircle/backend/internal/events"
	"github.com/carecircle/backend/internal/middleware"
	"github.com/carecircle/backend/internal/models"
	"github.com/carecircle/backend/internal/registrations"
	"github.com/carecircle/backend/internal/ticket"
	"github.com/carecircle/backend/internal/webhooks"
	"github.com/carecircle/backend/pkg/database"
	"github.com/carecircle/backend/pkg/queue"
	"github.com/carecircle/backend/pkg/redis"
	"github.com/carecircle/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth / profiles
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo)

	// Caregiver links
	caregiverRepo := caregivers.NewRepository(pool)
	caregiverHandler := caregivers.NewHandler(caregiverRepo)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	registrationHandler := registrations.NewHandler(registrationRepo, eventRepo, caregiverRepo, authRepo, logger)

	// QR attendance tickets
	ticketStore := ticket.NewRepository(pool)
	ticketService := ticket.NewService(ticketStore, cfg.QR.ImageSize, logger)
	ticketHandler := ticket.NewHandler(ticketService, registrationRepo, caregiverRepo, logger)

	// Identity-provider webhook sync
	var webhookVerifier *webhooks.Verifier
	if cfg.Webhook.Secret != "" {
		webhookVerifier, err = webhooks.NewVerifier(cfg.Webhook.Secret, time.Duration(cfg.Webhook.ToleranceSeconds)*time.Second)
		if err != nil {
			logger.Fatal("webhook verifier", zap.Error(err))
		}
	} else {
		logger.Warn("identity webhook disabled: no secret configured")
	}
	webhookHandler := webhooks.NewHandler(webhookVerifier, jobQueue, logger)

	// Analytics
	analyticsRepo := analytics.NewRepository(pool)
	analyticsHandler := analytics.NewHandler(analyticsRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Webhooks (no JWT; signature validated in handler)
	router.POST("/webhooks/identity", webhookHandler.HandleUserEvent)

	staffRoles := []string{string(models.RoleStaff), string(models.RoleAdmin)}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Profiles
		api.GET("/me", authHandler.Me)

		// Users (admin only)
		api.GET("/users", middleware.RequireRole(string(models.RoleAdmin)), authHandler.List)
		api.PATCH("/users/:id/role", middleware.RequireRole(string(models.RoleAdmin)), authHandler.SetRole)

		// Events
		api.GET("/events", eventHandler.ListActive)
		api.GET("/events/all", middleware.RequireRole(staffRoles...), eventHandler.List)
		api.POST("/events", middleware.RequireRole(staffRoles...), eventHandler.Create)
		api.POST("/events/bulk", middleware.RequireRole(staffRoles...), eventHandler.BulkCreate)
		api.GET("/events/:id", eventHandler.GetByID)
		api.PATCH("/events/:id", middleware.RequireRole(staffRoles...), eventHandler.Update)
		api.DELETE("/events/:id", middleware.RequireRole(staffRoles...), eventHandler.Archive)

		// Registrations
		api.POST("/events/:id/register", registrationHandler.Register)
		api.GET("/registrations", registrationHandler.ListMine)
		api.GET("/events/:id/registrations", middleware.RequireRole(staffRoles...), registrationHandler.ListByEvent)

		// Caregiver links
		api.GET("/caregivers/participants", caregiverHandler.ListParticipants)
		api.POST("/caregivers/participants", caregiverHandler.Link)
		api.DELETE("/caregivers/participants/:id", caregiverHandler.Unlink)

		// QR attendance tickets
		api.POST("/qr/issue", ticketHandler.Issue)
		api.POST("/qr/verify", middleware.RequireRole(staffRoles...), ticketHandler.Verify)

		// Analytics (staff/admin)
		api.GET("/analytics/attendance", middleware.RequireRole(staffRoles...), analyticsHandler.Attendance)
		api.GET("/analytics/top-attendees", middleware.RequireRole(staffRoles...), analyticsHandler.TopAttendees)
		api.GET("/analytics/staff-productivity", middleware.RequireRole(staffRoles...), analyticsHandler.StaffProductivity)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := cfg.Build()
	return logger
}
