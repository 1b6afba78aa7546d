// internal/httpserver/routes_daily.go
//
// "Word of the day" endpoint.
//   - GET /daily/word → today's word (UTC date), same for every caller
//
// Selection is deterministic: HMAC(DAILY_SALT, date) modulo catalog size.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hanzi-game/internal/daily"
	"github.com/robalobadob/hanzi-game/internal/words"
)

type dailyWordRes struct {
	Date    string         `json:"date"`
	Word    words.WordItem `json:"word"`
	Learned bool           `json:"learned"`
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily/word", s.handleDailyWord)
}

func (s *Server) handleDailyWord(w http.ResponseWriter, r *http.Request) {
	all := s.Catalog.Words()
	if len(all) == 0 {
		writeError(w, http.StatusNotFound, "no_words")
		return
	}
	now := s.Now()
	idx := daily.WordIndex(now, time.UTC, s.dailySalt(), len(all))
	wd := all[idx]
	p := s.Progress.Load(r.Context(), s.ownerID(w, r))
	_ = jsonEncode(w, dailyWordRes{
		Date:    daily.DateKey(now, time.UTC),
		Word:    wd,
		Learned: p.HasLearned(wd.ID),
	})
}

func (s *Server) dailySalt() string {
	if s.cfg.DailySalt == "" {
		return "local_dev_salt"
	}
	return s.cfg.DailySalt
}
