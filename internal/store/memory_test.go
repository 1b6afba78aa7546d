package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/hanzi-game/internal/game"
	"github.com/robalobadob/hanzi-game/internal/words"
)

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := words.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	st := NewMemoryStore()
	s := game.New("owner", c)
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("expected same session back, got %v (%v)", got, err)
	}
	_ = st.Delete(ctx, s.ID)
	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSweeperDropsIdleSessions(t *testing.T) {
	ctx := context.Background()
	c, err := words.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore()
	old := game.New("a", c, game.WithClock(func() time.Time { return base.Add(-3 * time.Hour) }))
	fresh := game.New("b", c, game.WithClock(func() time.Time { return base.Add(-10 * time.Minute) }))
	_ = st.Save(ctx, old)
	_ = st.Save(ctx, fresh)

	var reported int
	w := NewSweeper(st, 2*time.Hour, func(n int) { reported = n })
	w.now = func() time.Time { return base }
	w.RunOnce()

	if st.Len() != 1 || reported != 1 {
		t.Fatalf("expected 1 session left, got %d (reported %d)", st.Len(), reported)
	}
	if _, err := st.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("expected fresh session kept: %v", err)
	}
}
