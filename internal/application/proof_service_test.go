package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wkwkland69/piketeisd/internal/persistence"
	"github.com/wkwkland69/piketeisd/internal/testfixtures"
)

func newProofFixture(t *testing.T) (*ProofService, *testfixtures.MemoryStore, *testfixtures.Clock) {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("proof")
	service := NewProofService(store, ids.NextFunc(), clock.NowFunc())
	return service, store, clock
}

func TestProofService_Submit(t *testing.T) {
	t.Parallel()

	t.Run("assigns id, timestamp and digest", func(t *testing.T) {
		t.Parallel()

		service, store, clock := newProofFixture(t)
		proof, err := service.Submit(context.Background(), ProofInput{
			NIM:      "9900000001",
			Date:     testfixtures.ReferenceTime(),
			ImageURL: "data:image/png;base64,aGVsbG8=",
			Notes:    "corner bench wiped down",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if proof.ID != "proof-1" {
			t.Fatalf("expected generated id, got %q", proof.ID)
		}
		if !proof.SubmittedAt.Equal(clock.Now()) {
			t.Fatalf("expected submission timestamp %v, got %v", clock.Now(), proof.SubmittedAt)
		}
		if proof.Date.Hour() != 0 {
			t.Fatalf("expected date normalized to midnight, got %v", proof.Date)
		}
		if len(proof.ImageDigest) != 64 {
			t.Fatalf("expected a 256-bit hex digest, got %q", proof.ImageDigest)
		}

		value, ok := store.Value(persistence.KeyProofs)
		if !ok {
			t.Fatalf("expected proofs to be persisted")
		}
		stored, err := persistence.DecodeProofs(value)
		if err != nil || len(stored) != 1 {
			t.Fatalf("persisted proofs unusable: %v (%d records)", err, len(stored))
		}
		if stored[0].ID != "proof-1" {
			t.Fatalf("unexpected persisted record: %+v", stored[0])
		}
	})

	t.Run("leaves the digest empty without an image", func(t *testing.T) {
		t.Parallel()

		service, _, _ := newProofFixture(t)
		proof, err := service.Submit(context.Background(), ProofInput{
			NIM:  "9900000001",
			Date: testfixtures.ReferenceTime(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if proof.ImageDigest != "" {
			t.Fatalf("expected empty digest, got %q", proof.ImageDigest)
		}
	})

	t.Run("rejects missing fields with a validation error", func(t *testing.T) {
		t.Parallel()

		service, _, _ := newProofFixture(t)
		_, err := service.Submit(context.Background(), ProofInput{NIM: "   "})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["nim"]; !ok {
			t.Fatalf("expected a nim field error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["date"]; !ok {
			t.Fatalf("expected a date field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects a second submission for the same day and member", func(t *testing.T) {
		t.Parallel()

		service, _, _ := newProofFixture(t)
		day := testfixtures.ReferenceTime()
		if _, err := service.Submit(context.Background(), ProofInput{NIM: "9900000001", Date: day}); err != nil {
			t.Fatalf("first submission failed: %v", err)
		}

		// Same member later the same day is a duplicate regardless of clock time.
		_, err := service.Submit(context.Background(), ProofInput{NIM: "9900000001", Date: day.Add(3 * time.Hour)})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}

		// Another member the same day, and the same member the next day, both pass.
		if _, err := service.Submit(context.Background(), ProofInput{NIM: "9900000002", Date: day}); err != nil {
			t.Fatalf("different member rejected: %v", err)
		}
		if _, err := service.Submit(context.Background(), ProofInput{NIM: "9900000001", Date: day.AddDate(0, 0, 1)}); err != nil {
			t.Fatalf("next-day submission rejected: %v", err)
		}
	})

	t.Run("keeps the record in memory when persistence fails", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newProofFixture(t)
		store.SetErr = context.DeadlineExceeded

		proof, err := service.Submit(context.Background(), ProofInput{NIM: "9900000001", Date: testfixtures.ReferenceTime()})
		if err != nil {
			t.Fatalf("expected submission to succeed despite write failure, got %v", err)
		}
		if !service.HasSubmitted(context.Background(), proof.Date, proof.NIM) {
			t.Fatalf("expected in-memory record to remain authoritative")
		}
	})
}

func TestProofService_HasSubmitted(t *testing.T) {
	t.Parallel()

	service, _, _ := newProofFixture(t)
	day := testfixtures.ReferenceTime()

	if service.HasSubmitted(context.Background(), day, "9900000001") {
		t.Fatalf("expected no proof before submission")
	}
	if _, err := service.Submit(context.Background(), ProofInput{NIM: "9900000001", Date: day}); err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	if !service.HasSubmitted(context.Background(), day.Add(9*time.Hour), "9900000001") {
		t.Fatalf("expected proof lookup to match any instant on the same day")
	}
	if service.HasSubmitted(context.Background(), day.AddDate(0, 0, 1), "9900000001") {
		t.Fatalf("expected no proof on the following day")
	}
}

func TestProofService_ByDate(t *testing.T) {
	t.Parallel()

	service, _, _ := newProofFixture(t)
	day := testfixtures.ReferenceTime()

	for _, nim := range []string{"9900000003", "9900000001", "9900000002"} {
		if _, err := service.Submit(context.Background(), ProofInput{NIM: nim, Date: day}); err != nil {
			t.Fatalf("submission for %s failed: %v", nim, err)
		}
	}
	if _, err := service.Submit(context.Background(), ProofInput{NIM: "9900000001", Date: day.AddDate(0, 0, 1)}); err != nil {
		t.Fatalf("next-day submission failed: %v", err)
	}

	proofs := service.ByDate(context.Background(), day)
	if len(proofs) != 3 {
		t.Fatalf("expected 3 proofs for the day, got %d", len(proofs))
	}
	// Insertion order, not roster order.
	if proofs[0].NIM != "9900000003" || proofs[2].NIM != "9900000002" {
		t.Fatalf("expected insertion order, got %s, %s, %s", proofs[0].NIM, proofs[1].NIM, proofs[2].NIM)
	}
}

func TestProofService_Restore(t *testing.T) {
	t.Parallel()

	t.Run("loads persisted records", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newProofFixture(t)
		value, err := persistence.EncodeProofs([]persistence.StoredProof{{
			ID:        "legacy-1",
			NIM:       "9900000004",
			Date:      testfixtures.ReferenceTime(),
			Notes:     "restored from disk",
			Timestamp: testfixtures.ReferenceTime(),
		}})
		if err != nil {
			t.Fatalf("failed to encode seed proofs: %v", err)
		}
		store.Seed(persistence.KeyProofs, value)

		service.Restore(context.Background())

		if !service.HasSubmitted(context.Background(), testfixtures.ReferenceTime(), "9900000004") {
			t.Fatalf("expected restored proof to be visible")
		}
	})

	t.Run("starts empty over a corrupt value", func(t *testing.T) {
		t.Parallel()

		service, store, _ := newProofFixture(t)
		store.Seed(persistence.KeyProofs, "[broken")

		service.Restore(context.Background())

		if len(service.ByDate(context.Background(), testfixtures.ReferenceTime())) != 0 {
			t.Fatalf("expected an empty collection after corrupt state")
		}
	})

	t.Run("starts empty when nothing is stored", func(t *testing.T) {
		t.Parallel()

		service, _, _ := newProofFixture(t)
		service.Restore(context.Background())

		if service.HasSubmitted(context.Background(), testfixtures.ReferenceTime(), "9900000001") {
			t.Fatalf("expected no proofs after restoring empty storage")
		}
	})
}
