package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"moviesmama/internal/auth"
	"moviesmama/internal/config"
	apphttp "moviesmama/internal/http"
	"moviesmama/internal/logging"
	"moviesmama/internal/repository"
	"moviesmama/internal/repository/mongodb"
	"moviesmama/internal/repository/sqlite"
	"moviesmama/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		logrus.Fatalf("setup logging: %v", err)
	}
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, err := openUserRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open user repository: %v", err)
	}
	defer func() {
		if err := userRepo.Close(context.Background()); err != nil {
			logger.Warnf("close user repository: %v", err)
		}
	}()

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatalf("setup password hasher: %v", err)
	}
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		logger.Fatalf("setup token issuer: %v", err)
	}

	userService := service.NewUserService(userRepo, hasher, tokens, logger)

	gin.SetMode(gin.ReleaseMode)
	router := apphttp.NewHandler(userService, tokens, logger, apphttp.Options{
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		RateLimit:       cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimitWindow(),
	}).NewRouter()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func openUserRepository(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return sqlite.NewUserRepository(db), nil
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.Database.URI)
		if err != nil {
			return nil, err
		}
		logger.Infof("using mongo database %s", cfg.Database.Name)
		return mongodb.NewUserRepository(client, cfg.Database.Name), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
