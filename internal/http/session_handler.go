package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wkwkland69/piketeisd/internal/application"
	"github.com/wkwkland69/piketeisd/internal/roster"
)

type sessionService interface {
	Login(ctx context.Context, nim string) (roster.Member, error)
	Logout(ctx context.Context)
	Touch(ctx context.Context) error
	Current() (roster.Member, application.SessionState)
}

// SessionHandler exposes the session guard over HTTP.
type SessionHandler struct {
	service   sessionService
	responder responder
	logger    *slog.Logger
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(service sessionService, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

type loginRequest struct {
	NIM string `json:"nim"`
}

type memberDTO struct {
	NIM  string `json:"nim"`
	Name string `json:"name"`
}

type sessionResponse struct {
	State  string     `json:"state"`
	Member *memberDTO `json:"member,omitempty"`
}

// Create handles POST /session: roster-membership login.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	nim := strings.TrimSpace(req.NIM)
	logger := h.log(r.Context(), "Create", "nim", nim)

	member, err := h.service.Login(r.Context(), nim)
	if err != nil {
		logger.ErrorContext(r.Context(), "login rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member logged in")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{
		State:  application.SessionActive.String(),
		Member: &memberDTO{NIM: member.NIM, Name: member.Name},
	})
}

// Show handles GET /session: reports the guard state for the UI.
func (h *SessionHandler) Show(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	member, state := h.service.Current()
	resp := sessionResponse{State: state.String()}
	if state != application.SessionAnonymous {
		resp.Member = &memberDTO{NIM: member.NIM, Name: member.Name}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Delete handles DELETE /session: explicit logout.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.service.Logout(r.Context())
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Activity handles POST /session/activity: the explicit activity ping, which
// doubles as the idle-warning acknowledgement.
func (h *SessionHandler) Activity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.service.Touch(r.Context()); err != nil {
		h.log(r.Context(), "Activity").ErrorContext(r.Context(), "activity ping rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
