package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hanzi-game/internal/words"
)

// mountCatalog registers the read-only vocabulary endpoints.
//   - GET /levels → every level with the caller's unlock/completion state
//   - GET /words  → words, optionally filtered by ?difficulty= or ?level=
func (s *Server) mountCatalog(r chi.Router) {
	r.Get("/levels", s.handleLevels)
	r.Get("/words", s.handleWords)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	p := s.Progress.Load(r.Context(), s.ownerID(w, r))
	_ = jsonEncode(w, s.Progress.Tracker().Summarize(p).Levels)
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out := s.Catalog.Words()
	if lvl := q.Get("level"); lvl != "" {
		if _, ok := s.Catalog.Level(lvl); !ok {
			writeError(w, http.StatusNotFound, "unknown_level")
			return
		}
		out = s.Catalog.Pool(lvl)
	}
	if d := words.Difficulty(q.Get("difficulty")); d != "" {
		if !d.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_difficulty")
			return
		}
		filtered := []words.WordItem{}
		for _, wd := range out {
			if wd.Difficulty == d {
				filtered = append(filtered, wd)
			}
		}
		out = filtered
	}
	_ = jsonEncode(w, out)
}
