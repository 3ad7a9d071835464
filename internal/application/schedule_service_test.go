package application

import (
	"context"
	"testing"
	"time"

	"github.com/wkwkland69/piketeisd/internal/assignment"
	"github.com/wkwkland69/piketeisd/internal/persistence"
	"github.com/wkwkland69/piketeisd/internal/roster"
	"github.com/wkwkland69/piketeisd/internal/testfixtures"
)

func newScheduleFixture(t *testing.T) (*ScheduleService, *testfixtures.MemoryStore, *testfixtures.Clock) {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	gen := assignment.NewGenerator(6, clock.NowFunc(), testfixtures.NewRand(1))
	service := NewScheduleService(store, gen, testfixtures.SamplePool(), clock.NowFunc(), 14)
	return service, store, clock
}

func storedDay(offset int) time.Time {
	return assignment.Day(testfixtures.ReferenceTime()).AddDate(0, 0, offset)
}

func seedSchedules(t *testing.T, store *testfixtures.MemoryStore, schedules []persistence.StoredSchedule) {
	t.Helper()

	value, err := persistence.EncodeSchedules(schedules)
	if err != nil {
		t.Fatalf("failed to encode seed schedules: %v", err)
	}
	store.Seed(persistence.KeySchedules, value)
}

func storedEntry(date time.Time, nims ...string) persistence.StoredSchedule {
	students := make([]persistence.StoredMember, len(nims))
	for i, nim := range nims {
		students[i] = persistence.StoredMember{NIM: nim, Name: "Member " + nim}
	}
	return persistence.StoredSchedule{
		Date:           date,
		Students:       students,
		Representative: students[0],
	}
}

func TestScheduleService_Restore(t *testing.T) {
	t.Parallel()

	t.Run("generates and persists a fresh roster when storage is empty", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newScheduleFixture(t)
		service.Restore(context.Background())

		// Fixture time is a Monday, so today must carry an assignment.
		today := service.ByDate(context.Background(), testfixtures.ReferenceTime())
		if len(today) != 1 {
			t.Fatalf("expected an assignment for today, got %d", len(today))
		}
		value, ok := store.Value(persistence.KeySchedules)
		if !ok {
			t.Fatalf("expected generated roster to be persisted")
		}
		stored, err := persistence.DecodeSchedules(value)
		if err != nil {
			t.Fatalf("persisted roster does not decode: %v", err)
		}
		if len(stored) == 0 {
			t.Fatalf("expected persisted roster entries")
		}
	})

	t.Run("keeps a stored roster intact", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newScheduleFixture(t)
		seedSchedules(t, store, []persistence.StoredSchedule{
			storedEntry(storedDay(0), "9900000001", "9900000002"),
			storedEntry(storedDay(1), "9900000003", "9900000004"),
		})

		service.Restore(context.Background())

		entries := service.ByDate(context.Background(), storedDay(1))
		if len(entries) != 1 {
			t.Fatalf("expected the seeded entry to survive restore, got %d", len(entries))
		}
		if entries[0].Representative.NIM != "9900000003" {
			t.Fatalf("unexpected representative after restore: %+v", entries[0].Representative)
		}
		if store.SetCalls != 0 {
			t.Fatalf("expected no rewrite when stored state is usable, got %d writes", store.SetCalls)
		}
	})

	t.Run("regenerates over a corrupt stored value", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newScheduleFixture(t)
		store.Seed(persistence.KeySchedules, "{definitely not json")

		service.Restore(context.Background())

		if len(service.ByDate(context.Background(), testfixtures.ReferenceTime())) != 1 {
			t.Fatalf("expected a regenerated roster after corrupt state")
		}
		value, _ := store.Value(persistence.KeySchedules)
		if _, err := persistence.DecodeSchedules(value); err != nil {
			t.Fatalf("expected corrupt value to be replaced, decode failed: %v", err)
		}
	})

	t.Run("regenerates when the substrate read fails", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newScheduleFixture(t)
		store.GetErr = context.DeadlineExceeded

		service.Restore(context.Background())

		if len(service.ByDate(context.Background(), testfixtures.ReferenceTime())) != 1 {
			t.Fatalf("expected a regenerated roster after a read failure")
		}
	})
}

func TestScheduleService_UpcomingFor(t *testing.T) {
	t.Parallel()

	const nim = "9900000001"

	seed := []persistence.StoredSchedule{
		storedEntry(storedDay(-1), nim, "9900000002"),
		storedEntry(storedDay(0), nim, "9900000003"),
		storedEntry(storedDay(1), "9900000004", "9900000005"),
		storedEntry(storedDay(2), nim, "9900000006"),
	}

	newRestored := func(t *testing.T) *ScheduleService {
		t.Helper()
		service, store, _ := newScheduleFixture(t)
		seedSchedules(t, store, seed)
		service.Restore(context.Background())
		return service
	}

	t.Run("filters to the member's entries dated today or later", func(t *testing.T) {
		t.Parallel()

		upcoming := newRestored(t).UpcomingFor(context.Background(), nim, 10)
		if len(upcoming) != 2 {
			t.Fatalf("expected 2 upcoming entries, got %d", len(upcoming))
		}
		if !upcoming[0].Date.Equal(storedDay(0)) || !upcoming[1].Date.Equal(storedDay(2)) {
			t.Fatalf("unexpected upcoming dates: %v, %v", upcoming[0].Date, upcoming[1].Date)
		}
	})

	t.Run("truncates to the limit", func(t *testing.T) {
		t.Parallel()

		upcoming := newRestored(t).UpcomingFor(context.Background(), nim, 1)
		if len(upcoming) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(upcoming))
		}
		if !upcoming[0].Date.Equal(storedDay(0)) {
			t.Fatalf("expected the nearest entry first, got %v", upcoming[0].Date)
		}
	})

	t.Run("applies the default limit for non-positive values", func(t *testing.T) {
		t.Parallel()

		if got := newRestored(t).UpcomingFor(context.Background(), nim, 0); len(got) != 2 {
			t.Fatalf("expected the default limit to admit both entries, got %d", len(got))
		}
	})

	t.Run("returns copies that do not alias internal state", func(t *testing.T) {
		t.Parallel()

		service := newRestored(t)
		first := service.UpcomingFor(context.Background(), nim, 1)
		first[0].Crew[0] = roster.Member{NIM: "tampered"}

		again := service.UpcomingFor(context.Background(), nim, 1)
		if again[0].Crew[0].NIM == "tampered" {
			t.Fatalf("caller mutation leaked into service state")
		}
	})
}

func TestScheduleService_ExtendTo(t *testing.T) {
	t.Parallel()

	t.Run("is a no-op for a target inside the window", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newScheduleFixture(t)
		seedSchedules(t, store, []persistence.StoredSchedule{
			storedEntry(storedDay(0), "9900000001"),
			storedEntry(storedDay(7), "9900000002"),
		})
		service.Restore(context.Background())
		writesBefore := store.SetCalls

		service.ExtendTo(context.Background(), storedDay(7))
		service.ExtendTo(context.Background(), storedDay(3))

		if store.SetCalls != writesBefore {
			t.Fatalf("expected no persistence writes for in-window targets, got %d extra", store.SetCalls-writesBefore)
		}
		if len(service.ByDate(context.Background(), storedDay(7))) != 1 {
			t.Fatalf("expected existing entries untouched")
		}
	})

	t.Run("appends new days without reshuffling existing entries", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newScheduleFixture(t)
		service.Restore(context.Background())

		before := service.ByDate(context.Background(), testfixtures.ReferenceTime())
		if len(before) != 1 {
			t.Fatalf("expected an entry for today before extension")
		}
		writesBefore := store.SetCalls

		// 28 days ahead lands on the same weekday, a Monday.
		target := storedDay(28)
		service.ExtendTo(context.Background(), target)

		if store.SetCalls != writesBefore+1 {
			t.Fatalf("expected exactly one persistence write, got %d", store.SetCalls-writesBefore)
		}
		if len(service.ByDate(context.Background(), target)) != 1 {
			t.Fatalf("expected an assignment on the target business day")
		}

		after := service.ByDate(context.Background(), testfixtures.ReferenceTime())
		if len(after) != 1 || after[0].Representative != before[0].Representative {
			t.Fatalf("extension must not reshuffle existing entries: before=%+v after=%+v", before, after)
		}
	})
}

func TestScheduleService_PersistFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	service, store, _ := newScheduleFixture(t)
	store.SetErr = context.DeadlineExceeded

	service.Restore(context.Background())

	// The write failed but the in-memory roster still serves reads.
	if len(service.ByDate(context.Background(), testfixtures.ReferenceTime())) != 1 {
		t.Fatalf("expected in-memory roster to remain usable after a write failure")
	}
}
