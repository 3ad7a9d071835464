package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/wkwkland69/piketeisd/internal/application"
	"github.com/wkwkland69/piketeisd/internal/assignment"
	"github.com/wkwkland69/piketeisd/internal/config"
	httptransport "github.com/wkwkland69/piketeisd/internal/http"
	"github.com/wkwkland69/piketeisd/internal/logging"
	"github.com/wkwkland69/piketeisd/internal/persistence/sqlite"
	"github.com/wkwkland69/piketeisd/internal/roster"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now
	newID := func() string { return uuid.NewString() }
	pool := roster.Pool()
	generator := assignment.NewGenerator(cfg.CrewSize, now, nil)

	scheduleService := application.NewScheduleServiceWithLogger(storage, generator, pool, now, cfg.ScheduleHorizonDays, logger)
	proofService := application.NewProofServiceWithLogger(storage, newID, now, logger)
	sessionService := application.NewSessionServiceWithLogger(storage, roster.Find, &sessionObserver{logger: logger}, application.StdTimerFactory, now, application.SessionTimeouts{
		Idle:         cfg.IdleTimeout,
		WarningGrace: cfg.WarningGrace,
		RestoreGrace: cfg.RestoreGrace,
	}, logger)

	startupCtx := logging.ContextWithLogger(context.Background(), logger)
	scheduleService.Restore(startupCtx)
	proofService.Restore(startupCtx)
	sessionService.Restore(startupCtx)

	sessionHandler := httptransport.NewSessionHandler(sessionService, logger)
	scheduleHandler := httptransport.NewScheduleHandler(scheduleService, logger)
	proofHandler := httptransport.NewProofHandler(proofService, scheduleService, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Session:   sessionHandler,
		Schedules: scheduleHandler,
		Proofs:    proofHandler,
	})

	protected := httptransport.RequireSession(sessionService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The session endpoints manage the identity themselves and stay
		// reachable while anonymous.
		if strings.HasPrefix(r.URL.Path, "/session") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("duty roster API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// sessionObserver forwards guard notifications to the process log; a web
// frontend polling GET /session surfaces the same transitions to the user.
type sessionObserver struct {
	logger *slog.Logger
}

func (o *sessionObserver) IdleWarning(remaining time.Duration) {
	o.logger.Warn("session idle warning raised", "remaining", remaining)
}

func (o *sessionObserver) SessionEnded(reason application.LogoutReason) {
	o.logger.Info("session ended", "reason", string(reason))
}
