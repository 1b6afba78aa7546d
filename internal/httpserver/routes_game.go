// internal/httpserver/routes_game.go
//
// Game session endpoints. Sessions live in the in-memory store and belong to
// the caller (account id or anonymous id); other callers get 404.
//
//   - POST /game/new            → start a session on a level in a mode
//   - GET  /game/{id}           → current view
//   - POST /game/{id}/answer    → submit an answer; correct answers feed progress
//   - POST /game/{id}/hint      → spend a hint
//   - POST /game/{id}/next      → move to a fresh word
//   - POST /game/{id}/level     → switch level (score kept)
//   - POST /game/{id}/pause|resume|end|reset

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanzi-game/internal/game"
	"github.com/robalobadob/hanzi-game/internal/history"
	"github.com/robalobadob/hanzi-game/internal/prefs"
	"github.com/robalobadob/hanzi-game/internal/store"
)

type newGameReq struct {
	LevelID string `json:"levelId" validate:"omitempty,max=64"`
	Mode    string `json:"mode" validate:"omitempty,oneof=practice challenge"`
}

// answerReq carries free text; any mismatch, however long, scores as wrong.
type answerReq struct {
	Answer string `json:"answer"`
}

type levelReq struct {
	LevelID string `json:"levelId" validate:"required,max=64"`
}

// gameRes is a session view plus the sound cue the client should play.
type gameRes struct {
	game.View
	Sound string `json:"sound,omitempty"`
}

type answerRes struct {
	Result        game.AnswerResult `json:"result"`
	Game          game.View         `json:"game"`
	TotalScore    int               `json:"totalScore"`
	UnlockedLevel string            `json:"unlockedLevel,omitempty"`
	Sound         string            `json:"sound,omitempty"`
}

type hintRes struct {
	Hint           string `json:"hint"`
	RemainingHints int    `json:"remainingHints"`
	Sound          string `json:"sound,omitempty"`
}

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", s.withSession(s.handleGetGame))
		r.Post("/answer", s.withSession(s.handleAnswer))
		r.Post("/hint", s.withSession(s.handleHint))
		r.Post("/next", s.withSession(s.handleNext))
		r.Post("/level", s.withSession(s.handleSetLevel))
		r.Post("/pause", s.withSession(s.handlePause))
		r.Post("/resume", s.withSession(s.handleResume))
		r.Post("/end", s.withSession(s.handleEnd))
		r.Post("/reset", s.withSession(s.handleReset))
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, owner string, g *game.Session)

// withSession resolves {id} to a session owned by the caller.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := s.ownerID(w, r)
		g, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil || g.Owner != owner {
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Error().Err(err).Msg("load session")
			}
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		next(w, r, owner, g)
	}
}

// handleNewGame creates a session on the requested (or the player's current) level.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if !decodeBody(w, r, &req, true) {
		return
	}
	owner := s.ownerID(w, r)
	mode := game.ModePractice
	if req.Mode != "" {
		mode = game.Mode(req.Mode)
	}
	levelID := req.LevelID
	if levelID == "" {
		levelID = s.Progress.Load(r.Context(), owner).CurrentLevel
	}
	if !s.levelPlayable(r.Context(), w, owner, levelID) {
		return
	}

	g := game.New(owner, s.Catalog, s.sessionOptions()...)
	g.Start(levelID, mode)
	if err := s.Sessions.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.Metrics.GameStarted(string(mode), levelID)
	s.Metrics.SetActive(s.Sessions.Len())
	log.Debug().Str("game", g.ID).Str("owner", owner).Str("level", levelID).Msg("game started")

	writeJSON(w, http.StatusCreated, gameRes{View: g.View(), Sound: s.Prefs.Cue(r.Context(), owner, prefs.SoundStart)})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, _ string, g *game.Session) {
	_ = jsonEncode(w, gameRes{View: g.View()})
}

// handleAnswer checks the answer; a correct one is credited to the owner's progress.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request, owner string, g *game.Session) {
	var req answerReq
	if !decodeBody(w, r, &req, false) {
		return
	}
	res := g.SubmitAnswer(req.Answer)
	s.Metrics.Answered(string(res.Outcome))

	out := answerRes{Result: res}
	switch res.Outcome {
	case game.OutcomeCorrect:
		p, unlocked, err := s.Progress.RecordCorrect(r.Context(), owner, res.LevelID, res.WordID, res.Points)
		if err != nil {
			log.Error().Err(err).Str("owner", owner).Msg("record correct answer")
		}
		s.Metrics.Unlocked(unlocked)
		out.TotalScore = p.TotalScore
		out.UnlockedLevel = unlocked
		out.Sound = s.Prefs.Cue(r.Context(), owner, prefs.SoundCorrect)
	case game.OutcomeIncorrect:
		out.TotalScore = s.Progress.Load(r.Context(), owner).TotalScore
		out.Sound = s.Prefs.Cue(r.Context(), owner, prefs.SoundIncorrect)
	default:
		out.TotalScore = s.Progress.Load(r.Context(), owner).TotalScore
	}
	out.Game = g.View()
	_ = jsonEncode(w, out)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request, owner string, g *game.Session) {
	hint, ok := g.UseHint()
	if !ok {
		writeError(w, http.StatusConflict, "no_hint_available")
		return
	}
	s.Metrics.HintsUsed.Inc()
	_ = jsonEncode(w, hintRes{
		Hint:           hint,
		RemainingHints: g.State().RemainingHints,
		Sound:          s.Prefs.Cue(r.Context(), owner, prefs.SoundHint),
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request, owner string, g *game.Session) {
	g.NextWord()
	_ = jsonEncode(w, gameRes{View: g.View(), Sound: s.Prefs.Cue(r.Context(), owner, prefs.SoundClick)})
}

func (s *Server) handleSetLevel(w http.ResponseWriter, r *http.Request, owner string, g *game.Session) {
	var req levelReq
	if !decodeBody(w, r, &req, false) {
		return
	}
	if !s.levelPlayable(r.Context(), w, owner, req.LevelID) {
		return
	}
	g.SelectLevel(req.LevelID)
	_ = jsonEncode(w, gameRes{View: g.View()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, _ string, g *game.Session) {
	if !g.Pause() {
		writeError(w, http.StatusConflict, "not_playing")
		return
	}
	_ = jsonEncode(w, gameRes{View: g.View()})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request, _ string, g *game.Session) {
	if !g.Resume() {
		writeError(w, http.StatusConflict, "not_paused")
		return
	}
	_ = jsonEncode(w, gameRes{View: g.View()})
}

// handleEnd completes the session and records it in the owner's history.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request, owner string, g *game.Session) {
	st := g.End()
	if s.History != nil {
		if err := s.History.Record(r.Context(), historyRow(g.ID, owner, st, s.Now())); err != nil {
			log.Warn().Err(err).Str("game", g.ID).Msg("record history")
		}
	}
	_ = jsonEncode(w, gameRes{View: g.View(), Sound: s.Prefs.Cue(r.Context(), owner, prefs.SoundComplete)})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, _ string, g *game.Session) {
	g.Reset()
	_ = jsonEncode(w, gameRes{View: g.View()})
}

// levelPlayable writes 404/403 and returns false for unknown or locked levels.
func (s *Server) levelPlayable(ctx context.Context, w http.ResponseWriter, owner, levelID string) bool {
	if _, ok := s.Catalog.Level(levelID); !ok {
		writeError(w, http.StatusNotFound, "unknown_level")
		return false
	}
	p := s.Progress.Load(ctx, owner)
	if !s.Progress.Tracker().IsUnlocked(p, levelID) {
		writeError(w, http.StatusForbidden, "level_locked")
		return false
	}
	return true
}

func (s *Server) sessionOptions() []game.Option {
	opts := []game.Option{game.WithClock(game.Clock(s.Now))}
	if s.Picker != nil {
		opts = append(opts, game.WithPicker(s.Picker))
	}
	return opts
}

func historyRow(id, owner string, st game.State, now time.Time) history.Game {
	started, ended := now, now
	if st.StartTime != nil {
		started = *st.StartTime
	}
	if st.EndTime != nil {
		ended = *st.EndTime
	}
	return history.Game{
		ID:             id,
		OwnerID:        owner,
		LevelID:        st.CurrentLevel,
		Mode:           string(st.Mode),
		Score:          st.Score,
		CorrectAnswers: st.CorrectAnswers,
		WrongAnswers:   st.WrongAnswers,
		StartedAt:      history.FormatTime(started),
		EndedAt:        history.FormatTime(ended),
	}
}
