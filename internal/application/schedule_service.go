package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wkwkland69/piketeisd/internal/assignment"
	"github.com/wkwkland69/piketeisd/internal/persistence"
	"github.com/wkwkland69/piketeisd/internal/roster"
)

// DefaultHorizonDays is the calendar-day window seeded when no usable
// schedule state exists in storage.
const DefaultHorizonDays = 30

// DefaultUpcomingLimit bounds UpcomingFor results when the caller does not
// supply a limit.
const DefaultUpcomingLimit = 5

// ScheduleService owns the ordered duty roster. It is the sole writer of the
// schedules storage key; all returned entries are copies.
type ScheduleService struct {
	mu      sync.RWMutex
	store   persistence.KeyValueStore
	gen     *assignment.Generator
	pool    []roster.Member
	now     func() time.Time
	horizon int
	logger  *slog.Logger

	entries []Schedule
}

// NewScheduleService constructs a ScheduleService with the provided
// dependencies.
func NewScheduleService(store persistence.KeyValueStore, gen *assignment.Generator, pool []roster.Member, now func() time.Time, horizon int) *ScheduleService {
	return NewScheduleServiceWithLogger(store, gen, pool, now, horizon, nil)
}

// NewScheduleServiceWithLogger constructs a ScheduleService with a specified
// logger.
func NewScheduleServiceWithLogger(store persistence.KeyValueStore, gen *assignment.Generator, pool []roster.Member, now func() time.Time, horizon int, logger *slog.Logger) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	poolCopy := make([]roster.Member, len(pool))
	copy(poolCopy, pool)
	return &ScheduleService{
		store:   store,
		gen:     gen,
		pool:    poolCopy,
		now:     now,
		horizon: horizon,
		logger:  defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// Restore loads the persisted roster, falling back to a fresh generation over
// the default horizon when the stored value is absent or unparseable. Parse
// failures are logged, never propagated.
func (s *ScheduleService) Restore(ctx context.Context) {
	logger := s.loggerWith(ctx, "Restore")

	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.store.Get(ctx, persistence.KeySchedules)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		s.regenerateLocked(ctx, logger)
		return
	case err != nil:
		logger.ErrorContext(ctx, "failed to read stored schedules", "error", err)
		s.regenerateLocked(ctx, logger)
		return
	}

	stored, err := persistence.DecodeSchedules(value)
	if err != nil {
		logger.ErrorContext(ctx, "discarding corrupt schedule state", "error", err)
		s.regenerateLocked(ctx, logger)
		return
	}

	s.entries = make([]Schedule, len(stored))
	for i, entry := range stored {
		s.entries[i] = fromStoredSchedule(entry)
	}
	logger.InfoContext(ctx, "schedules restored", "entries", len(s.entries))
}

// UpcomingFor returns the next entries whose crew contains nim, dated today
// or later, ascending, truncated to limit. A non-positive limit applies
// DefaultUpcomingLimit.
func (s *ScheduleService) UpcomingFor(ctx context.Context, nim string, limit int) []Schedule {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	today := assignment.Day(s.now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	upcoming := make([]Schedule, 0, limit)
	for _, entry := range s.entries {
		if entry.Date.Before(today) {
			continue
		}
		if !crewContains(entry.Crew, nim) {
			continue
		}
		upcoming = append(upcoming, cloneSchedule(entry))
		if len(upcoming) == limit {
			break
		}
	}
	return upcoming
}

// ByDate returns every entry scheduled on the calendar day containing date.
func (s *ScheduleService) ByDate(ctx context.Context, date time.Time) []Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Schedule, 0, 1)
	for _, entry := range s.entries {
		if assignment.SameDay(entry.Date, date) {
			matches = append(matches, cloneSchedule(entry))
		}
	}
	return matches
}

// ExtendTo grows the roster so that target falls inside the generated window.
// When target is on or before the last scheduled date the call is a no-op.
// Extension appends new business days after the existing horizon plus a
// further default-horizon tail; already generated entries, past ones
// included, are never reshuffled.
func (s *ScheduleService) ExtendTo(ctx context.Context, target time.Time) {
	targetDay := assignment.Day(target)
	logger := s.loggerWith(ctx, "ExtendTo", "target", targetDay.Format(time.DateOnly))

	s.mu.Lock()
	defer s.mu.Unlock()

	last := assignment.Day(s.now())
	if len(s.entries) > 0 {
		last = assignment.Day(s.entries[len(s.entries)-1].Date)
	}
	if !targetDay.After(last) {
		return
	}

	days := daysBetween(last, targetDay) + s.horizon
	generated := s.gen.GenerateFrom(last.AddDate(0, 0, 1), s.pool, days)
	for _, entry := range generated {
		s.entries = append(s.entries, fromAssignmentEntry(entry))
	}
	s.persistLocked(ctx, logger)
	logger.InfoContext(ctx, "schedule extended", "appended", len(generated), "entries", len(s.entries))
}

// regenerateLocked replaces all state with a fresh default-horizon roster.
func (s *ScheduleService) regenerateLocked(ctx context.Context, logger *slog.Logger) {
	generated := s.gen.Generate(s.pool, s.horizon)
	s.entries = make([]Schedule, len(generated))
	for i, entry := range generated {
		s.entries[i] = fromAssignmentEntry(entry)
	}
	s.persistLocked(ctx, logger)
	logger.InfoContext(ctx, "schedules generated", "entries", len(s.entries))
}

// persistLocked writes the full collection. Write failures are logged and not
// surfaced; the in-memory state remains authoritative for the session.
func (s *ScheduleService) persistLocked(ctx context.Context, logger *slog.Logger) {
	stored := make([]persistence.StoredSchedule, len(s.entries))
	for i, entry := range s.entries {
		stored[i] = toStoredSchedule(entry)
	}
	value, err := persistence.EncodeSchedules(stored)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode schedules", "error", err)
		return
	}
	if err := s.store.Set(ctx, persistence.KeySchedules, value); err != nil {
		logger.ErrorContext(ctx, "failed to persist schedules", "error", err)
	}
}

func fromAssignmentEntry(e assignment.Entry) Schedule {
	crew := make([]roster.Member, len(e.Crew))
	copy(crew, e.Crew)
	return Schedule{Date: e.Date, Crew: crew, Representative: e.Representative}
}

func crewContains(crew []roster.Member, nim string) bool {
	for _, m := range crew {
		if m.NIM == nim {
			return true
		}
	}
	return false
}

// daysBetween counts calendar days from one midnight to a later one.
func daysBetween(from, to time.Time) int {
	days := 0
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		days++
	}
	return days
}
