package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aula-lms/aula-lms/internal/accounts"
	"github.com/aula-lms/aula-lms/internal/app"
	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/calendar"
	"github.com/aula-lms/aula-lms/internal/courses"
	"github.com/aula-lms/aula-lms/internal/forums"
	"github.com/aula-lms/aula-lms/internal/observability"
	"github.com/aula-lms/aula-lms/internal/platform/db"
	"github.com/aula-lms/aula-lms/internal/platform/filestore"
	"github.com/aula-lms/aula-lms/internal/reports"
	"github.com/aula-lms/aula-lms/internal/shared"
	"github.com/aula-lms/aula-lms/internal/token"
	"github.com/aula-lms/aula-lms/migrations"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(migrations.FS, cfg.PGDSN); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	codec, err := token.NewCodec(cfg.JWTSecret)
	if err != nil {
		logger.Error("token codec", slog.Any("error", err))
		os.Exit(1)
	}
	resolver := shared.NewSessionResolver(codec)
	gate := authz.Middleware{Resolver: resolver}
	visibility := authz.NewVisibility(authz.NewStore(pool))

	files := filestore.New(cfg.DataDir)
	metrics := observability.NewMetrics()

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo, codec)
	accountsHandler := accounts.NewHandler(logger, accountsService, gate)

	coursesRepo := courses.NewRepository(pool)
	coursesService := courses.NewService(coursesRepo, visibility, files)
	coursesHandler := courses.NewHandler(logger, coursesService, gate)

	forumsRepo := forums.NewRepository(pool)
	forumsService := forums.NewService(forumsRepo, forumsRepo, visibility)
	forumsHandler := forums.NewHandler(logger, forumsService, gate)

	calendarRepo := calendar.NewRepository(pool)
	calendarService := calendar.NewService(calendarRepo, visibility)
	calendarHandler := calendar.NewHandler(logger, calendarService, gate)

	reportsRepo := reports.NewRepository(pool)
	reportsHandler := reports.NewHandler(logger, reportsRepo, gate)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AccountsHandler: accountsHandler,
		CoursesHandler:  coursesHandler,
		ForumsHandler:   forumsHandler,
		CalendarHandler: calendarHandler,
		ReportsHandler:  reportsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
