package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/training-records-backend/internal/config"
	appHTTP "github.com/cmlabs-hris/training-records-backend/internal/handler/http"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/database"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/storage"
	"github.com/cmlabs-hris/training-records-backend/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/training-records-backend/internal/service/auth"
	employeeService "github.com/cmlabs-hris/training-records-backend/internal/service/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/service/file"
	trainingService "github.com/cmlabs-hris/training-records-backend/internal/service/training"
	"github.com/go-chi/httplog/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "training-records"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL(), database.Options{
		MaxConns:       cfg.Database.MaxConns,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		RetryInterval:  cfg.Database.RetryInterval,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.BootstrapSchema {
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			return err
		}
		logger.Info("Database schema ensured")
	}

	var (
		fileStorage storage.FileStorage
		assetsDir   string
	)
	switch cfg.Storage.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("initialize local storage: %w", err)
		}
		fileStorage = local
		assetsDir = local.BasePath()
	case "inline":
		fileStorage = storage.NewInlineStorage(cfg.Storage.MaxUploadSize)
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	adminHash := cfg.Admin.PasswordHash
	if adminHash == "" {
		adminHash, err = serviceAuth.HashPassword(cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	trainingRepo := postgresql.NewTrainingRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	fileService := file.NewFileService(fileStorage, cfg.Storage.MaxUploadSize)
	authService := serviceAuth.NewAuthService(employeeRepo, serviceAuth.NewStaticAdminStore(cfg.Admin.Username, adminHash), JWTService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, trainingRepo, transactor, fileService, cfg.Employee.DefaultPassword)
	trainingSvc := trainingService.NewTrainingService(trainingRepo, fileService)

	authHandler := appHTTP.NewAuthHandler(authService)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc, cfg.Storage.MaxUploadSize)
	trainingHandler := appHTTP.NewTrainingHandler(trainingSvc, cfg.Storage.MaxUploadSize)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		LogLevel:       level,
		AllowedOrigins: cfg.App.AllowedOrigins,
		AssetsURL:      cfg.Storage.BaseURL,
		AssetsDir:      assetsDir,
	}, JWTService, authHandler, employeeHandler, trainingHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.App.Port, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
