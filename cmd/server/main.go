package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-billing-backend/internal/config"
	handler "agency-billing-backend/internal/handlers"
	"agency-billing-backend/internal/logging"
	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/monitoring"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/routes"
	"agency-billing-backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.App.LogLevel)
	if envErr != nil {
		log.Info("No .env file found, relying on system env")
	}

	gin.SetMode(cfg.Server.Mode)

	db, err := config.InitDB(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}
	}

	if err := handler.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}
	monitoring.InitMetrics(log)

	svc := routes.NewServices(db, cfg, log, services.SystemClock)

	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Users.EnsureApprover(bootCtx, cfg.Bootstrap.ApproverEmail, cfg.Bootstrap.ApproverPassword); err != nil {
		log.WithError(err).Error("failed to bootstrap approver")
	}
	cancel()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(log), middleware.Logger(log), middleware.Metrics())
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, svc, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
}
