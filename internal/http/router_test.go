package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wkwkland69/piketeisd/internal/application"
	"github.com/wkwkland69/piketeisd/internal/roster"
)

func newTestRouter(session *stubSessionService, schedules *stubScheduleService, proofs *stubProofService) http.Handler {
	return NewRouter(RouterConfig{
		Session:   NewSessionHandler(session, nil),
		Schedules: NewScheduleHandler(schedules, nil),
		Proofs:    NewProofHandler(proofs, nil, proofTestNow, nil),
	})
}

func TestRouter_Dispatch(t *testing.T) {
	t.Parallel()

	session := &stubSessionService{
		currentMember: roster.Member{NIM: "9900000001", Name: "Test Member One"},
		currentState:  application.SessionActive,
	}
	schedules := &stubScheduleService{}
	proofs := &stubProofService{}
	router := newTestRouter(session, schedules, proofs)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{name: "show session", method: http.MethodGet, target: "/session", want: http.StatusOK},
		{name: "logout", method: http.MethodDelete, target: "/session", want: http.StatusNoContent},
		{name: "activity ping", method: http.MethodPost, target: "/session/activity", want: http.StatusNoContent},
		{name: "list schedules", method: http.MethodGet, target: "/schedules?date=2025-03-03", want: http.StatusOK},
		{name: "upcoming schedules", method: http.MethodGet, target: "/schedules/upcoming?participant=9900000001", want: http.StatusOK},
		{name: "extend schedules", method: http.MethodPost, target: "/schedules/extend", body: `{"target_date":"2025-04-14"}`, want: http.StatusNoContent},
		{name: "list proofs", method: http.MethodGet, target: "/proofs?date=2025-03-03", want: http.StatusOK},
		{name: "proof status", method: http.MethodGet, target: "/proofs/status?date=2025-03-03&participant=9900000001", want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body *strings.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tc.method, tc.target, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubSessionService{}, &stubScheduleService{}, &stubProofService{})

	cases := []struct {
		name      string
		method    string
		target    string
		wantAllow string
	}{
		{name: "put session", method: http.MethodPut, target: "/session", wantAllow: "POST, GET, DELETE"},
		{name: "get activity", method: http.MethodGet, target: "/session/activity", wantAllow: "POST"},
		{name: "post schedules", method: http.MethodPost, target: "/schedules", wantAllow: "GET"},
		{name: "delete proofs", method: http.MethodDelete, target: "/proofs", wantAllow: "POST, GET"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", rec.Code)
			}
			if got := rec.Header().Get("Allow"); got != tc.wantAllow {
				t.Fatalf("expected Allow %q, got %q", tc.wantAllow, got)
			}
		})
	}
}

func TestRouter_AppliesMiddleware(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewRouter(RouterConfig{
		Session:    NewSessionHandler(&stubSessionService{}, nil),
		Middleware: []func(http.Handler) http.Handler{tag("outer"), tag("inner")},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("unexpected middleware order: %v", order)
	}
}
