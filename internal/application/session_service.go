package application

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wkwkland69/piketeisd/internal/persistence"
	"github.com/wkwkland69/piketeisd/internal/roster"
)

// Idle-session defaults, in line with the countdown the web client shows.
const (
	// DefaultIdleTimeout is how long a session stays active without any
	// observed activity before the warning countdown starts.
	DefaultIdleTimeout = 55 * time.Second
	// DefaultWarningGrace is how long the warning stays up before the
	// session is force-closed.
	DefaultWarningGrace = 5 * time.Second
	// DefaultRestoreGrace bounds how stale a persisted session may be and
	// still be restored at startup. It exceeds the idle timeout to absorb
	// reload latency.
	DefaultRestoreGrace = 59 * time.Second
)

// SessionState identifies the guard's current position in its lifecycle.
type SessionState int

const (
	// SessionAnonymous means no identity is established.
	SessionAnonymous SessionState = iota
	// SessionActive means an identity is established and the idle timer is
	// armed.
	SessionActive
	// SessionWarning means the idle timeout elapsed and the forced-logout
	// countdown is armed.
	SessionWarning
)

// String returns a stable label for logging and API payloads.
func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionWarning:
		return "warning"
	default:
		return "anonymous"
	}
}

// LogoutReason distinguishes explicit logout from an elapsed countdown.
type LogoutReason string

const (
	// LogoutReasonExplicit marks a user initiated logout.
	LogoutReasonExplicit LogoutReason = "logout"
	// LogoutReasonIdle marks a forced logout after the warning countdown
	// elapsed unacknowledged.
	LogoutReasonIdle LogoutReason = "idle_timeout"
)

// SessionObserver receives guard notifications destined for the UI
// collaborator. Implementations must not call back into the service from the
// notification goroutine's critical path; both methods are invoked outside
// the guard's lock.
type SessionObserver interface {
	IdleWarning(remaining time.Duration)
	SessionEnded(reason LogoutReason)
}

// SessionTimeouts bundles the guard's three windows. Non-positive fields fall
// back to the package defaults.
type SessionTimeouts struct {
	Idle         time.Duration
	WarningGrace time.Duration
	RestoreGrace time.Duration
}

// SessionService tracks the authenticated identity and drives the idle
// timeout state machine. Exactly one timer is armed while authenticated
// (first the idle window, then the warning countdown) and none while
// anonymous; every transition cancels the previous timer before arming the
// next. The service exclusively owns the currentIdentity and lastActivityAt
// storage keys.
type SessionService struct {
	mu       sync.Mutex
	store    persistence.KeyValueStore
	lookup   func(nim string) (roster.Member, bool)
	observer SessionObserver
	newTimer TimerFactory
	now      func() time.Time
	timeouts SessionTimeouts
	logger   *slog.Logger

	state    SessionState
	identity roster.Member
	timer    Timer
	timerGen uint64
}

// NewSessionService constructs a SessionService with the provided
// dependencies.
func NewSessionService(store persistence.KeyValueStore, lookup func(string) (roster.Member, bool), observer SessionObserver, newTimer TimerFactory, now func() time.Time, timeouts SessionTimeouts) *SessionService {
	return NewSessionServiceWithLogger(store, lookup, observer, newTimer, now, timeouts, nil)
}

// NewSessionServiceWithLogger constructs a SessionService with a specified
// logger.
func NewSessionServiceWithLogger(store persistence.KeyValueStore, lookup func(string) (roster.Member, bool), observer SessionObserver, newTimer TimerFactory, now func() time.Time, timeouts SessionTimeouts, logger *slog.Logger) *SessionService {
	if lookup == nil {
		lookup = roster.Find
	}
	if newTimer == nil {
		newTimer = StdTimerFactory
	}
	if now == nil {
		now = time.Now
	}
	if timeouts.Idle <= 0 {
		timeouts.Idle = DefaultIdleTimeout
	}
	if timeouts.WarningGrace <= 0 {
		timeouts.WarningGrace = DefaultWarningGrace
	}
	if timeouts.RestoreGrace <= 0 {
		timeouts.RestoreGrace = DefaultRestoreGrace
	}
	return &SessionService{
		store:    store,
		lookup:   lookup,
		observer: observer,
		newTimer: newTimer,
		now:      now,
		timeouts: timeouts,
		logger:   defaultLogger(logger),
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// Restore re-establishes a persisted session at startup. A stored identity
// whose last activity is fresher than the restore grace window resumes as
// active with a refreshed activity timestamp; anything else clears the
// persisted keys and starts anonymous.
func (s *SessionService) Restore(ctx context.Context) {
	logger := s.loggerWith(ctx, "Restore")

	s.mu.Lock()
	defer s.mu.Unlock()

	nim, errIdentity := s.store.Get(ctx, persistence.KeyCurrentIdentity)
	activityValue, errActivity := s.store.Get(ctx, persistence.KeyLastActivityAt)
	if errIdentity != nil || errActivity != nil {
		if (errIdentity != nil && !errors.Is(errIdentity, persistence.ErrNotFound)) ||
			(errActivity != nil && !errors.Is(errActivity, persistence.ErrNotFound)) {
			logger.ErrorContext(ctx, "failed to read persisted session", "identity_error", errIdentity, "activity_error", errActivity)
		}
		s.clearPersistedLocked(ctx, logger)
		return
	}

	lastActivity, err := parseActivity(activityValue)
	if err != nil {
		logger.ErrorContext(ctx, "discarding corrupt activity timestamp", "error", err)
		s.clearPersistedLocked(ctx, logger)
		return
	}

	now := s.now()
	if now.Sub(lastActivity) >= s.timeouts.RestoreGrace {
		logger.InfoContext(ctx, "persisted session expired", "error_kind", ErrorKind(ErrSessionExpired))
		s.clearPersistedLocked(ctx, logger)
		return
	}

	member, ok := s.lookup(nim)
	if !ok {
		logger.ErrorContext(ctx, "persisted identity not on roster", "nim", nim)
		s.clearPersistedLocked(ctx, logger)
		return
	}

	s.identity = member
	s.state = SessionActive
	s.persistActivityLocked(ctx, logger, now)
	s.armIdleLocked()
	logger.With("nim", member.NIM).InfoContext(ctx, "session restored")
}

// Login establishes an authenticated session for a roster member. An unknown
// NIM leaves the current state untouched and returns ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, nim string) (member roster.Member, err error) {
	nim = strings.TrimSpace(nim)
	logger := s.loggerWith(ctx, "Login", "nim", nim)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "login succeeded")
	}()

	if nim == "" {
		vErr := &ValidationError{}
		vErr.add("nim", "nim is required")
		err = vErr
		return
	}

	member, ok := s.lookup(nim)
	if !ok {
		member = roster.Member{}
		err = ErrInvalidCredentials
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.identity = member
	s.state = SessionActive
	if setErr := s.store.Set(ctx, persistence.KeyCurrentIdentity, member.NIM); setErr != nil {
		logger.ErrorContext(ctx, "failed to persist identity", "error", setErr)
	}
	s.persistActivityLocked(ctx, logger, now)
	s.armIdleLocked()
	return
}

// Logout ends the session immediately and clears persisted identity state.
func (s *SessionService) Logout(ctx context.Context) {
	logger := s.loggerWith(ctx, "Logout")

	s.mu.Lock()
	if s.state == SessionAnonymous {
		s.mu.Unlock()
		return
	}
	nim := s.identity.NIM
	s.endSessionLocked(ctx, logger)
	s.mu.Unlock()

	logger.With("nim", nim).InfoContext(ctx, "logged out")
	s.notifyEnded(LogoutReasonExplicit)
}

// Touch records a user-activity event: it refreshes the persisted activity
// timestamp, dismisses a pending idle warning and restarts the idle window
// from zero. Touch also serves as the explicit warning acknowledgement.
func (s *SessionService) Touch(ctx context.Context) error {
	logger := s.loggerWith(ctx, "Touch")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionAnonymous {
		return ErrUnauthorized
	}

	s.state = SessionActive
	s.persistActivityLocked(ctx, logger, s.now())
	s.armIdleLocked()
	return nil
}

// Current returns the authenticated member and the guard state. The member is
// the zero value while anonymous.
func (s *SessionService) Current() (roster.Member, SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.state
}

// armIdleLocked cancels any armed timer and starts the idle window.
func (s *SessionService) armIdleLocked() {
	s.cancelTimerLocked()
	gen := s.timerGen
	s.timer = s.newTimer(s.timeouts.Idle, func() { s.idleElapsed(gen) })
}

// idleElapsed runs when the idle window passes without activity. gen is the
// timer generation the callback was armed under; a mismatch means the timer
// fired concurrently with a transition that already superseded it, and the
// callback must not act.
func (s *SessionService) idleElapsed(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.state != SessionActive {
		s.mu.Unlock()
		return
	}
	s.state = SessionWarning
	s.cancelTimerLocked()
	warnGen := s.timerGen
	s.timer = s.newTimer(s.timeouts.WarningGrace, func() { s.warningElapsed(warnGen) })
	remaining := s.timeouts.WarningGrace
	nim := s.identity.NIM
	s.mu.Unlock()

	s.logger.Info("idle warning raised", "service", "SessionService", "nim", nim)
	if s.observer != nil {
		s.observer.IdleWarning(remaining)
	}
}

// warningElapsed runs when the warning countdown passes unacknowledged.
func (s *SessionService) warningElapsed(gen uint64) {
	ctx := context.Background()
	logger := s.loggerWith(ctx, "ForcedLogout")

	s.mu.Lock()
	if gen != s.timerGen || s.state != SessionWarning {
		s.mu.Unlock()
		return
	}
	nim := s.identity.NIM
	s.endSessionLocked(ctx, logger)
	s.mu.Unlock()

	logger.With("nim", nim).InfoContext(ctx, "session force-closed after idle timeout")
	s.notifyEnded(LogoutReasonIdle)
}

// endSessionLocked tears the session down to anonymous: timer cancelled,
// identity cleared, persisted keys removed.
func (s *SessionService) endSessionLocked(ctx context.Context, logger *slog.Logger) {
	s.cancelTimerLocked()
	s.state = SessionAnonymous
	s.identity = roster.Member{}
	s.clearPersistedLocked(ctx, logger)
}

// cancelTimerLocked stops the armed timer and bumps the generation. Stop may
// return false when the timer already fired; the bump keeps that in-flight
// callback from acting on post-cancellation state.
func (s *SessionService) cancelTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SessionService) clearPersistedLocked(ctx context.Context, logger *slog.Logger) {
	if err := s.store.Delete(ctx, persistence.KeyCurrentIdentity); err != nil {
		logger.ErrorContext(ctx, "failed to clear persisted identity", "error", err)
	}
	if err := s.store.Delete(ctx, persistence.KeyLastActivityAt); err != nil {
		logger.ErrorContext(ctx, "failed to clear persisted activity", "error", err)
	}
}

func (s *SessionService) persistActivityLocked(ctx context.Context, logger *slog.Logger, now time.Time) {
	value := strconv.FormatInt(now.UnixMilli(), 10)
	if err := s.store.Set(ctx, persistence.KeyLastActivityAt, value); err != nil {
		logger.ErrorContext(ctx, "failed to persist activity timestamp", "error", err)
	}
}

func (s *SessionService) notifyEnded(reason LogoutReason) {
	if s.observer != nil {
		s.observer.SessionEnded(reason)
	}
}

// parseActivity reads the persisted unix-millisecond activity timestamp.
func parseActivity(value string) (time.Time, error) {
	millis, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis), nil
}
