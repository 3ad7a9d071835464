package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers and outermost middleware into the router.
type RouterConfig struct {
	Session    *SessionHandler
	Schedules  *ScheduleHandler
	Proofs     *ProofHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the API routing table described in the package
// documentation.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Session != nil {
		mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Session.Create(w, r)
			case http.MethodGet:
				cfg.Session.Show(w, r)
			case http.MethodDelete:
				cfg.Session.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/session/activity", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Session.Activity(w, r)
		})
	}

	if cfg.Schedules != nil {
		mux.HandleFunc("/schedules", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.List(w, r)
		})
		mux.HandleFunc("/schedules/upcoming", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.Upcoming(w, r)
		})
		mux.HandleFunc("/schedules/extend", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Schedules.Extend(w, r)
		})
	}

	if cfg.Proofs != nil {
		mux.HandleFunc("/proofs", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Proofs.Create(w, r)
			case http.MethodGet:
				cfg.Proofs.List(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodGet)
			}
		})
		mux.HandleFunc("/proofs/status", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Proofs.Status(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
