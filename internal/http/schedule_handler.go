package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wkwkland69/piketeisd/internal/application"
)

type scheduleService interface {
	UpcomingFor(ctx context.Context, nim string, limit int) []application.Schedule
	ByDate(ctx context.Context, date time.Time) []application.Schedule
	ExtendTo(ctx context.Context, target time.Time)
}

// ScheduleHandler exposes duty roster queries over HTTP.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

type scheduleDTO struct {
	Date           string      `json:"date"`
	Students       []memberDTO `json:"students"`
	Representative memberDTO   `json:"representative"`
}

type extendRequest struct {
	TargetDate string `json:"target_date"`
}

// List handles GET /schedules?date=YYYY-MM-DD.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	entries := h.service.ByDate(r.Context(), date)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleDTOs(entries))
}

// Upcoming handles GET /schedules/upcoming?participant=&limit=. The
// participant defaults to the authenticated member.
func (h *ScheduleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
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

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		limit = parsed
	}

	entries := h.service.UpcomingFor(r.Context(), nim, limit)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleDTOs(entries))
}

// Extend handles POST /schedules/extend: grows the generated window so the
// target date is covered. Calendar navigation beyond the horizon uses this.
func (h *ScheduleHandler) Extend(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req extendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Extend", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode extend request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	target, err := parseDateParam(req.TargetDate)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	h.service.ExtendTo(r.Context(), target)
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func toScheduleDTOs(entries []application.Schedule) []scheduleDTO {
	dtos := make([]scheduleDTO, len(entries))
	for i, entry := range entries {
		students := make([]memberDTO, len(entry.Crew))
		for j, member := range entry.Crew {
			students[j] = memberDTO{NIM: member.NIM, Name: member.Name}
		}
		dtos[i] = scheduleDTO{
			Date:           entry.Date.Format(time.DateOnly),
			Students:       students,
			Representative: memberDTO{NIM: entry.Representative.NIM, Name: entry.Representative.Name},
		}
	}
	return dtos
}

// parseDateParam parses a YYYY-MM-DD value in the server's local time zone,
// matching how schedule dates are generated.
func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errMissingDate
	}
	date, err := time.ParseInLocation(time.DateOnly, value, time.Local)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return date, nil
}
