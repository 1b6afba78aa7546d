package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type volumeReq struct {
	Volume *float64 `json:"volume" validate:"required"`
}

// mountPrefs registers the sound preference routes.
func (s *Server) mountPrefs(r chi.Router) {
	r.Get("/prefs/sound", s.handleGetSound)
	r.Post("/prefs/sound/toggle", s.handleToggleSound)
	r.Post("/prefs/sound/volume", s.handleSetVolume)
}

func (s *Server) handleGetSound(w http.ResponseWriter, r *http.Request) {
	_ = jsonEncode(w, s.Prefs.Get(r.Context(), s.ownerID(w, r)))
}

func (s *Server) handleToggleSound(w http.ResponseWriter, r *http.Request) {
	got, err := s.Prefs.Toggle(r.Context(), s.ownerID(w, r))
	if err != nil {
		log.Error().Err(err).Msg("toggle sound")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	_ = jsonEncode(w, got)
}

// handleSetVolume clamps out-of-range values rather than rejecting them.
func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeReq
	if !decodeBody(w, r, &req, false) {
		return
	}
	got, err := s.Prefs.SetVolume(r.Context(), s.ownerID(w, r), *req.Volume)
	if err != nil {
		log.Error().Err(err).Msg("set volume")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	_ = jsonEncode(w, got)
}
