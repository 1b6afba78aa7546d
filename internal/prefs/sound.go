// Package prefs stores per-player sound preferences and maps game events to
// sound cues. Playback itself is left to the client.
package prefs

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanzi-game/internal/kv"
)

const (
	DefaultEnabled = true
	DefaultVolume  = 0.7
)

// Sound names a cue the client can play.
type Sound string

const (
	SoundCorrect   Sound = "correct"
	SoundIncorrect Sound = "incorrect"
	SoundHint      Sound = "hint"
	SoundComplete  Sound = "complete"
	SoundStart     Sound = "start"
	SoundClick     Sound = "click"
)

// SoundPaths maps each cue to its client asset.
var SoundPaths = map[Sound]string{
	SoundCorrect:   "/sounds/correct.mp3",
	SoundIncorrect: "/sounds/incorrect.mp3",
	SoundHint:      "/sounds/hint.mp3",
	SoundComplete:  "/sounds/level-complete.mp3",
	SoundStart:     "/sounds/game-start.mp3",
	SoundClick:     "/sounds/click.mp3",
}

// SoundSettings is what the client renders.
type SoundSettings struct {
	Enabled bool             `json:"enabled"`
	Volume  float64          `json:"volume"`
	Sounds  map[Sound]string `json:"sounds"`
}

func enabledKey(owner string) string { return "sound-enabled:" + owner }
func volumeKey(owner string) string  { return "sound-volume:" + owner }

// Store reads and writes the two sound keys of each owner.
type Store struct {
	kv kv.Store
}

// NewStore constructs a preference store over s.
func NewStore(s kv.Store) *Store { return &Store{kv: s} }

// Get returns the owner's settings, with defaults for missing or unreadable keys.
func (s *Store) Get(ctx context.Context, owner string) SoundSettings {
	return SoundSettings{
		Enabled: readOr(ctx, s.kv, enabledKey(owner), DefaultEnabled),
		Volume:  Clamp(readOr(ctx, s.kv, volumeKey(owner), DefaultVolume)),
		Sounds:  SoundPaths,
	}
}

// Toggle flips sound on/off and returns the new settings.
func (s *Store) Toggle(ctx context.Context, owner string) (SoundSettings, error) {
	cur := s.Get(ctx, owner)
	cur.Enabled = !cur.Enabled
	if err := kv.SetJSON(ctx, s.kv, enabledKey(owner), cur.Enabled); err != nil {
		return cur, err
	}
	return cur, nil
}

// SetVolume stores v clamped to [0, 1] and returns the new settings.
func (s *Store) SetVolume(ctx context.Context, owner string, v float64) (SoundSettings, error) {
	cur := s.Get(ctx, owner)
	cur.Volume = Clamp(v)
	if err := kv.SetJSON(ctx, s.kv, volumeKey(owner), cur.Volume); err != nil {
		return cur, err
	}
	return cur, nil
}

// Cue returns the asset path for sound, or "" when the owner has sound off.
func (s *Store) Cue(ctx context.Context, owner string, sound Sound) string {
	if !readOr(ctx, s.kv, enabledKey(owner), DefaultEnabled) {
		return ""
	}
	return SoundPaths[sound]
}

// Clamp bounds a volume to [0, 1].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func readOr[T any](ctx context.Context, s kv.Store, key string, def T) T {
	var v T
	if err := kv.GetJSON(ctx, s, key, &v); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("read preference; using default")
		}
		return def
	}
	return v
}
