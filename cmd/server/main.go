// Package main runs the meeting transcriber HTTP server with graceful shutdown.
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

	"github.com/aura-webinar/meeting-transcriber/config"
	"github.com/aura-webinar/meeting-transcriber/internal/app"
	"github.com/aura-webinar/meeting-transcriber/internal/middleware"
	"github.com/aura-webinar/meeting-transcriber/internal/pipeline"
	"github.com/aura-webinar/meeting-transcriber/internal/process"
	"github.com/aura-webinar/meeting-transcriber/internal/static"
	"github.com/aura-webinar/meeting-transcriber/pkg/response"
)

func main() {
	logger := app.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	services, err := app.Build(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("build services", zap.Error(err))
	}
	defer services.Close()

	orchestrator := pipeline.New(ctx, services.Deps, logger)
	processHandler := process.NewHandler(orchestrator, app.Defaults(*cfg), logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})
	processHandler.Register(router)
	router.NoRoute(static.Handler(cfg.Server.StaticDir))

	srv := app.NewHTTPServer(cfg.Server, router)

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("report_provider", cfg.Report.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	grace := time.Duration(cfg.Server.ShutdownGrace) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		logger.Warn("in-flight runs cancelled", zap.Error(err))
	}
	logger.Info("server stopped")
}
