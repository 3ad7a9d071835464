package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/wkwkland69/piketeisd/internal/application"
	"github.com/wkwkland69/piketeisd/internal/roster"
)

// SessionGate is the slice of the session guard the middleware needs: the
// current identity plus the activity ping.
type SessionGate interface {
	Current() (roster.Member, application.SessionState)
	Touch(ctx context.Context) error
}

// RequireSession rejects requests while the guard is anonymous. Every request
// that passes the gate counts as a user-activity event, so serving it also
// restarts the idle countdown.
func RequireSession(gate SessionGate, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			member, state := gate.Current()
			if state == application.SessionAnonymous {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errNotLoggedIn)
				return
			}

			if err := gate.Touch(r.Context()); err != nil {
				responder.handleServiceError(r.Context(), w, err)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request scoped logger to the context and records
// request boundaries.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
