// internal/httpserver/server.go
//
// HTTP server wiring for the Hanzi flashcard backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Catalog endpoints: /levels, /words, /daily/word.
//   - Game, progress and sound preference endpoints (optional auth; guests play
//     under an anonymous cookie id).
//   - Auth endpoints: /auth/*, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Errors are JSON bodies of the form {"error":"code"}.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/hanzi-game/internal/config"
	"github.com/robalobadob/hanzi-game/internal/game"
	"github.com/robalobadob/hanzi-game/internal/history"
	"github.com/robalobadob/hanzi-game/internal/metrics"
	"github.com/robalobadob/hanzi-game/internal/prefs"
	"github.com/robalobadob/hanzi-game/internal/progress"
	"github.com/robalobadob/hanzi-game/internal/store"
	"github.com/robalobadob/hanzi-game/internal/users"
	"github.com/robalobadob/hanzi-game/internal/words"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Catalog  *words.Catalog
	Sessions store.Store
	Progress *progress.Service
	Prefs    *prefs.Store
	Users    *users.Repo
	History  *history.Repo
	Metrics  *metrics.Metrics

	// Optional; tests pin these.
	Now    func() time.Time
	Picker game.Picker
}

// Server bundles the router and its dependencies.
type Server struct {
	r   *chi.Mux
	cfg config.Config
	Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, d Deps) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	s := &Server{r: chi.NewRouter(), cfg: cfg, Deps: d}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hanzi-go","endpoints":["/health","/levels","/words","POST /game/new","/progress","/prefs/sound","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Handle("/metrics", s.Metrics.Handler())

	// Everything a guest can do runs under optional auth.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountCatalog(r)
		s.mountDaily(r)
		s.mountGame(r)
		s.mountProgress(r)
		s.mountPrefs(r)
	})

	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ helpers ------------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the {"error":code} body used across the API.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// jsonEncode writes v with the default 200 status.
func jsonEncode(w http.ResponseWriter, v any) error {
	return json.NewEncoder(w).Encode(v)
}
