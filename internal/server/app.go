// Package server initializes and runs the CV backend: it opens the database,
// applies migrations, wires the diploma service with its object storage and
// optional cache, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pmorel/cv-backend/internal/logging"
	"github.com/pmorel/cv-backend/internal/server/auth"
	"github.com/pmorel/cv-backend/internal/server/blob"
	"github.com/pmorel/cv-backend/internal/server/cache"
	"github.com/pmorel/cv-backend/internal/server/config"
	"github.com/pmorel/cv-backend/internal/server/diplomas"
	"github.com/pmorel/cv-backend/internal/server/httpapi"
	"github.com/pmorel/cv-backend/internal/server/migrations"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.New(cfg.LogFormat)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	repo := diplomas.NewPostgresRepository(db)
	files := blob.NewS3Store(cfg, logger)
	sessions := auth.NewSessions(cfg.AdminPasswordHash, cfg.SessionTTL)
	verifier := auth.NewVerifier(cfg.AdminPasswordHash)

	// The cache stays a nil interface when Redis is not configured; the
	// service treats that as caching disabled.
	var listCache diplomas.ListCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		listCache = cache.NewDiplomaList(client, cfg.CacheTTL, logger)
	}

	service := diplomas.NewService(repo, files, sessions, listCache, logger)
	srv := httpapi.NewServer(cfg, verifier, sessions, service, logger)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func applyMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
	app.logger.Info(ctx, "App stopped")
}
