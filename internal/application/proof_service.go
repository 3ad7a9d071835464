package application

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/wkwkland69/piketeisd/internal/assignment"
	"github.com/wkwkland69/piketeisd/internal/persistence"
)

// ProofService owns submitted inspection proofs. It is the sole writer of the
// proofs storage key. Records are append-only; no delete operation exists.
type ProofService struct {
	mu     sync.RWMutex
	store  persistence.KeyValueStore
	newID  func() string
	now    func() time.Time
	logger *slog.Logger

	proofs []Proof
}

// NewProofService constructs a ProofService with the provided dependencies.
func NewProofService(store persistence.KeyValueStore, newID func() string, now func() time.Time) *ProofService {
	return NewProofServiceWithLogger(store, newID, now, nil)
}

// NewProofServiceWithLogger constructs a ProofService with a specified logger.
func NewProofServiceWithLogger(store persistence.KeyValueStore, newID func() string, now func() time.Time, logger *slog.Logger) *ProofService {
	if newID == nil {
		newID = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProofService{
		store:  store,
		newID:  newID,
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *ProofService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProofService", operation, attrs...)
}

// Restore loads persisted proofs. An absent or unparseable value yields an
// empty collection; parse failures are logged, never propagated.
func (s *ProofService) Restore(ctx context.Context) {
	logger := s.loggerWith(ctx, "Restore")

	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.store.Get(ctx, persistence.KeyProofs)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to read stored proofs", "error", err)
		}
		s.proofs = nil
		return
	}

	stored, err := persistence.DecodeProofs(value)
	if err != nil {
		logger.ErrorContext(ctx, "discarding corrupt proof state", "error", err)
		s.proofs = nil
		return
	}

	s.proofs = make([]Proof, len(stored))
	for i, proof := range stored {
		s.proofs[i] = fromStoredProof(proof)
	}
	logger.InfoContext(ctx, "proofs restored", "records", len(s.proofs))
}

// Submit records a new proof. The service assigns the id, the submission
// timestamp and an integrity digest of the image payload, then persists the
// full collection. A second submission for the same day and NIM is rejected
// with ErrAlreadyExists.
func (s *ProofService) Submit(ctx context.Context, input ProofInput) (proof Proof, err error) {
	nim := strings.TrimSpace(input.NIM)
	logger := s.loggerWith(ctx, "Submit",
		"nim", nim,
		"date", assignment.Day(input.Date).Format(time.DateOnly),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "proof submission rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("proof_id", proof.ID).InfoContext(ctx, "proof submitted")
	}()

	vErr := &ValidationError{}
	if nim == "" {
		vErr.add("nim", "nim is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	day := assignment.Day(input.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasSubmittedLocked(day, nim) {
		err = ErrAlreadyExists
		return
	}

	proof = Proof{
		ID:          s.newID(),
		NIM:         nim,
		Date:        day,
		ImageURL:    input.ImageURL,
		ImageDigest: imageDigest(input.ImageURL),
		Notes:       input.Notes,
		SubmittedAt: s.now(),
	}
	s.proofs = append(s.proofs, proof)
	s.persistLocked(ctx, logger)
	return
}

// HasSubmitted reports whether a proof exists for the given calendar day and
// NIM.
func (s *ProofService) HasSubmitted(ctx context.Context, date time.Time, nim string) bool {
	day := assignment.Day(date)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasSubmittedLocked(day, nim)
}

// ByDate returns every proof submitted for the calendar day containing date,
// in insertion order.
func (s *ProofService) ByDate(ctx context.Context, date time.Time) []Proof {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Proof, 0, 1)
	for _, proof := range s.proofs {
		if assignment.SameDay(proof.Date, date) {
			matches = append(matches, proof)
		}
	}
	return matches
}

func (s *ProofService) hasSubmittedLocked(day time.Time, nim string) bool {
	for _, proof := range s.proofs {
		if proof.NIM == nim && assignment.SameDay(proof.Date, day) {
			return true
		}
	}
	return false
}

// persistLocked writes the full collection. Write failures are logged and not
// surfaced; the in-memory state remains authoritative for the session.
func (s *ProofService) persistLocked(ctx context.Context, logger *slog.Logger) {
	stored := make([]persistence.StoredProof, len(s.proofs))
	for i, proof := range s.proofs {
		stored[i] = toStoredProof(proof)
	}
	value, err := persistence.EncodeProofs(stored)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode proofs", "error", err)
		return
	}
	if err := s.store.Set(ctx, persistence.KeyProofs, value); err != nil {
		logger.ErrorContext(ctx, "failed to persist proofs", "error", err)
	}
}

// imageDigest fingerprints the embedded data URI so identical re-uploads can
// be detected without comparing full payloads.
func imageDigest(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(imageURL))
	return hex.EncodeToString(sum[:])
}
