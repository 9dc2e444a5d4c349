// Package app owns the process lifecycle: it builds every dependency from a
// Config once, serves HTTP, and tears everything down on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ems/internal/auth"
	"ems/internal/cache"
	"ems/internal/config"
	"ems/internal/db"
	"ems/internal/handler"
	"ems/internal/model"
	"ems/internal/repository"
	"ems/internal/router"
	"ems/internal/service"
)

// App is the running service.
type App struct {
	cfg   *config.Config
	log   *logrus.Logger
	db    *gorm.DB
	cache *cache.Client
	echo  *echo.Echo
}

// NewLogger builds the process logger: JSON lines at the configured level,
// info when the level does not parse.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// New connects to the database and Redis, migrates the schema and wires the
// HTTP stack. Nothing is served until Start is called.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	gormLevel := logger.Warn
	if cfg.IsDevelopment() {
		gormLevel = logger.Info
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, db.NewLogger(log, gormLevel))
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	if err := Migrate(gormDB, cfg.ResetDB, log); err != nil {
		_ = db.Close(gormDB)
		return nil, err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	if err := cacheClient.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unreachable, refresh tokens will not be accepted until it is back")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	employeeRepo := repository.NewEmployeeRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, log)
	userService := service.NewUserService(userRepo)
	employeeService := service.NewEmployeeService(employeeRepo, log)

	e := echo.New()
	router.Register(
		e,
		cfg,
		log,
		jwtService,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewEmployeeHandler(employeeService),
	)

	return &App{cfg: cfg, log: log, db: gormDB, cache: cacheClient, echo: e}, nil
}

// Migrate creates or updates the schema. With reset set, existing tables are
// dropped first.
func Migrate(gormDB *gorm.DB, reset bool, log logrus.FieldLogger) error {
	models := []interface{}{&model.User{}, &model.Employee{}}

	if reset {
		log.Warn("RESET_DB=true detected, dropping all tables")
		for _, m := range models {
			if err := gormDB.Migrator().DropTable(m); err != nil {
				log.WithError(err).Warn("failed to drop table (may not exist)")
			}
		}
	}

	if err := gormDB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Start serves HTTP until Shutdown is called. It returns nil after a clean
// shutdown.
func (a *App) Start() error {
	addr := ":" + a.cfg.ServerPort
	a.log.WithFields(logrus.Fields{"addr": addr, "swagger": SwaggerURL(a.cfg)}).Info("server starting")
	if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server start: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the database pool and the
// Redis client. All three are attempted even if one fails.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := db.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if err := a.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	return errors.Join(errs...)
}
