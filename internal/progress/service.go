package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanzi-game/internal/kv"
)

// Key returns the storage key of an owner's progress record.
func Key(owner string) string { return "progress:" + owner }

// Service is the progress store: it loads, mutates and writes back whole
// records through a kv.Store.
type Service struct {
	store   kv.Store
	tracker *Tracker
	now     func() time.Time

	mu sync.Mutex // serialises read-modify-write cycles within this process
}

// NewService constructs a Service. now defaults to time.Now.
func NewService(store kv.Store, tracker *Tracker, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, tracker: tracker, now: now}
}

// Tracker exposes the derivation rules.
func (s *Service) Tracker() *Tracker { return s.tracker }

// Load returns the owner's record, applying the streak update.
// Missing or unreadable records fall back to a fresh default; the failure is
// logged, never returned.
func (s *Service) Load(ctx context.Context, owner string) UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, dirty := s.read(ctx, owner)
	if s.tracker.UpdateStreak(&p, s.now()) {
		dirty = true
	}
	if dirty {
		if err := kv.SetJSON(ctx, s.store, Key(owner), p); err != nil {
			log.Warn().Err(err).Str("owner", owner).Msg("write progress")
		}
	}
	return p
}

// Update loads the owner's record, applies the streak update and fn, and
// writes it back wholesale.
func (s *Service) Update(ctx context.Context, owner string, fn func(t *Tracker, p *UserProgress)) (UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _ := s.read(ctx, owner)
	s.tracker.UpdateStreak(&p, s.now())
	fn(s.tracker, &p)
	if err := kv.SetJSON(ctx, s.store, Key(owner), p); err != nil {
		return p, err
	}
	return p, nil
}

// RecordCorrect credits a correct answer: score for the level, the word as
// learned, then the unlock check. Returns the record and the newly unlocked
// level ("" when none).
func (s *Service) RecordCorrect(ctx context.Context, owner, levelID, wordID string, points int) (UserProgress, string, error) {
	var unlocked string
	p, err := s.Update(ctx, owner, func(t *Tracker, p *UserProgress) {
		now := s.now()
		t.UpdateScore(p, levelID, points, now)
		t.MarkWordLearned(p, wordID, levelID, now)
		if lvl, changed := t.CheckAndUnlock(p); changed {
			unlocked = lvl
		}
	})
	return p, unlocked, err
}

// CompleteLevel flags a level completed and runs the unlock check.
func (s *Service) CompleteLevel(ctx context.Context, owner, levelID string) (UserProgress, string, error) {
	var unlocked string
	p, err := s.Update(ctx, owner, func(t *Tracker, p *UserProgress) {
		if lvl, changed := t.CompleteLevel(p, levelID); changed {
			unlocked = lvl
		}
	})
	return p, unlocked, err
}

// Claim moves the record of `from` (a guest) to `to` (an account) when the
// account has no record of its own, then removes the guest record. When the
// account already has progress both records are left untouched.
func (s *Service) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(ctx, Key(to)); err == nil {
		return nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return err
	}

	var p UserProgress
	if err := kv.GetJSON(ctx, s.store, Key(from), &p); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}
		return err
	}
	p.UserID = to
	s.tracker.Repair(&p)
	if err := kv.SetJSON(ctx, s.store, Key(to), p); err != nil {
		return err
	}
	return s.store.Delete(ctx, Key(from))
}

// read fetches and repairs the record. dirty reports that the returned value
// differs from what is stored (fresh default).
func (s *Service) read(ctx context.Context, owner string) (UserProgress, bool) {
	var p UserProgress
	err := kv.GetJSON(ctx, s.store, Key(owner), &p)
	switch {
	case err == nil:
		s.tracker.Repair(&p)
		if p.UserID == "" {
			p.UserID = owner
		}
		return p, false
	case errors.Is(err, kv.ErrNotFound):
	default:
		log.Warn().Err(err).Str("owner", owner).Msg("read progress; using defaults")
	}
	return s.tracker.New(owner, s.now()), true
}
