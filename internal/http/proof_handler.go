package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wkwkland69/piketeisd/internal/application"
	"github.com/wkwkland69/piketeisd/internal/assignment"
)

// maxImageBytes caps the embedded data URI. The upload form limits files to
// 5 MB; base64 encoding inflates that by roughly a third.
const maxImageBytes = 7 * 1024 * 1024

var (
	errImageTooLarge = errors.New("image exceeds the 5MB upload limit")
	errImageRequired = errors.New("please upload an image as proof of inspection")
	errNoScheduleDay = errors.New("no inspection schedule found for this day")
	errNotOnSchedule = errors.New("you are not on the crew for this day")
)

type proofService interface {
	Submit(ctx context.Context, input application.ProofInput) (application.Proof, error)
	HasSubmitted(ctx context.Context, date time.Time, nim string) bool
	ByDate(ctx context.Context, date time.Time) []application.Proof
}

type scheduleFinder interface {
	ByDate(ctx context.Context, date time.Time) []application.Schedule
}

// ProofHandler exposes proof submission and lookup over HTTP. Schedule
// membership, the representative-only image requirement and the upload size
// cap are enforced here, at the surface the form submits to.
type ProofHandler struct {
	service   proofService
	schedules scheduleFinder
	responder responder
	logger    *slog.Logger
	now       func() time.Time
}

// NewProofHandler constructs a ProofHandler. A nil now defaults to time.Now.
func NewProofHandler(service proofService, schedules scheduleFinder, now func() time.Time, logger *slog.Logger) *ProofHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &ProofHandler{service: service, schedules: schedules, responder: newResponder(base), logger: base, now: now}
}

func (h *ProofHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProofHandler", operation, attrs...)
}

type submitProofRequest struct {
	NIM      string `json:"nim"`
	Date     string `json:"date"`
	ImageURL string `json:"imageUrl"`
	Notes    string `json:"notes"`
}

type proofDTO struct {
	ID          string `json:"id"`
	NIM         string `json:"nim"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageDigest string `json:"imageDigest,omitempty"`
	Notes       string `json:"notes"`
	SubmittedAt string `json:"submittedAt"`
}

type proofStatusResponse struct {
	Submitted bool `json:"submitted"`
}

// Create handles POST /proofs. NIM defaults to the authenticated member and
// the date to today.
func (h *ProofHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req submitProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode proof request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	nim := strings.TrimSpace(req.NIM)
	if nim == "" {
		if principal, ok := PrincipalFromContext(r.Context()); ok {
			nim = principal.NIM
		}
	}

	date := assignment.Day(h.now())
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := parseDateParam(req.Date)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		date = assignment.Day(parsed)
	}

	logger := h.log(r.Context(), "Create", "nim", nim, "date", date.Format(time.DateOnly))

	if len(req.ImageURL) > maxImageBytes {
		h.responder.writeError(r.Context(), w, http.StatusRequestEntityTooLarge, errImageTooLarge)
		return
	}

	if err := h.checkSchedule(r.Context(), date, nim, req.ImageURL); err != nil {
		logger.ErrorContext(r.Context(), "proof submission rejected", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	proof, err := h.service.Submit(r.Context(), application.ProofInput{
		NIM:      nim,
		Date:     date,
		ImageURL: req.ImageURL,
		Notes:    req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "proof submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("proof_id", proof.ID).InfoContext(r.Context(), "proof submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toProofDTO(proof))
}

// List handles GET /proofs?date=YYYY-MM-DD.
func (h *ProofHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	proofs := h.service.ByDate(r.Context(), date)
	dtos := make([]proofDTO, len(proofs))
	for i, proof := range proofs {
		dtos[i] = toProofDTO(proof)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Status handles GET /proofs/status?date=&participant=.
func (h *ProofHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	nim := strings.TrimSpace(r.URL.Query().Get("participant"))
	if nim == "" {
		if principal, ok := PrincipalFromContext(r.Context()); ok {
			nim = principal.NIM
		}
	}
	if nim == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errNotLoggedIn)
		return
	}

	submitted := h.service.HasSubmitted(r.Context(), date, nim)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, proofStatusResponse{Submitted: submitted})
}

// checkSchedule applies the submission rules the upload form relies on: a
// schedule must exist for the day, the submitter must be on its crew, and the
// day's representative must attach an image.
func (h *ProofHandler) checkSchedule(ctx context.Context, date time.Time, nim, imageURL string) error {
	if h.schedules == nil {
		return nil
	}

	entries := h.schedules.ByDate(ctx, date)
	if len(entries) == 0 {
		return errNoScheduleDay
	}

	for _, entry := range entries {
		for _, member := range entry.Crew {
			if member.NIM != nim {
				continue
			}
			if entry.Representative.NIM == nim && strings.TrimSpace(imageURL) == "" {
				return errImageRequired
			}
			return nil
		}
	}
	return errNotOnSchedule
}

func toProofDTO(proof application.Proof) proofDTO {
	return proofDTO{
		ID:          proof.ID,
		NIM:         proof.NIM,
		Date:        proof.Date.Format(time.DateOnly),
		ImageURL:    proof.ImageURL,
		ImageDigest: proof.ImageDigest,
		Notes:       proof.Notes,
		SubmittedAt: proof.SubmittedAt.Format(time.RFC3339),
	}
}
