package httpserver

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanzi-game/internal/prefs"
	"github.com/robalobadob/hanzi-game/internal/progress"
	"github.com/robalobadob/hanzi-game/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type completeRes struct {
	progress.Summary
	UnlockedLevel string `json:"unlockedLevel,omitempty"`
	Sound         string `json:"sound,omitempty"`
}

// mountProgress registers:
//   - GET  /progress                      → summary of the caller's record
//   - POST /progress/levels/{id}/complete → mark a level complete
//   - GET  /progress/report.xlsx          → the summary as a workbook
func (s *Server) mountProgress(r chi.Router) {
	r.Get("/progress", s.handleProgress)
	r.Post("/progress/levels/{id}/complete", s.handleCompleteLevel)
	r.Get("/progress/report.xlsx", s.handleReport)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p := s.Progress.Load(r.Context(), s.ownerID(w, r))
	_ = jsonEncode(w, s.Progress.Tracker().Summarize(p))
}

func (s *Server) handleCompleteLevel(w http.ResponseWriter, r *http.Request) {
	owner := s.ownerID(w, r)
	levelID := chi.URLParam(r, "id")
	if _, ok := s.Catalog.Level(levelID); !ok {
		writeError(w, http.StatusNotFound, "unknown_level")
		return
	}
	p, unlocked, err := s.Progress.CompleteLevel(r.Context(), owner, levelID)
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("complete level")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.Metrics.Unlocked(unlocked)
	_ = jsonEncode(w, completeRes{
		Summary:       s.Progress.Tracker().Summarize(p),
		UnlockedLevel: unlocked,
		Sound:         s.Prefs.Cue(r.Context(), owner, prefs.SoundComplete),
	})
}

// handleReport renders into a buffer first so failures still get a JSON error.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	p := s.Progress.Load(r.Context(), s.ownerID(w, r))
	var buf bytes.Buffer
	if err := report.Write(&buf, s.Progress.Tracker().Summarize(p)); err != nil {
		log.Error().Err(err).Msg("build report")
		writeError(w, http.StatusInternalServerError, "report_failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="hanzi-progress.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
