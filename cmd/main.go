package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpContext "github.com/dtroode/taskflow-server/internal/api/http/context"
	"github.com/dtroode/taskflow-server/internal/api/http/router"
	httpServer "github.com/dtroode/taskflow-server/internal/api/http/server"
	"github.com/dtroode/taskflow-server/internal/completion"
	"github.com/dtroode/taskflow-server/internal/config"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/pin"
	"github.com/dtroode/taskflow-server/internal/repository/postgres"
	"github.com/dtroode/taskflow-server/internal/server"
	"github.com/dtroode/taskflow-server/internal/service"
	storage "github.com/dtroode/taskflow-server/internal/storage/minio"
	"github.com/dtroode/taskflow-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	sessionService := service.NewSession(sessionRepo, token.NewOpaque(), cfg.Auth.SessionTTL, logger)
	authService := service.NewAuth(userRepo, sessionService, pin.NewHasher(cfg.Auth.PINIterations), cfg.Auth.DefaultUsername, logger)
	adminService := service.NewAdmin(userRepo, authService, sessionService, logger)
	taskService := service.NewTask(taskRepo, logger)
	historyService := service.NewHistory(historyRepo, logger)
	settingsService := service.NewSettings(settingsRepo, logger)

	completer := completion.New(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout, logger)
	assistService := service.NewAssist(completer, taskRepo, settingsRepo, cfg.AI.APIKey, cfg.AI.Model, logger)

	services := router.Services{
		Auth:     authService,
		Sessions: sessionService,
		Tasks:    taskService,
		History:  historyService,
		Settings: settingsService,
		Assist:   assistService,
		Admin:    adminService,
		DB:       db,
	}

	if cfg.Storage.Enabled {
		storageClient, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to initialize storage client", "error", err)
		}
		services.Export = service.NewExport(taskService, settingsService, storageClient, logger)
	}

	handler := router.New(services, httpContext.NewManager(), cfg.HTTP.MaxBodyBytes, logger).Register()
	srv := httpServer.NewHTTPServer(handler, fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
