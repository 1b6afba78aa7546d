package users

import (
	"context"
	"errors"
	"testing"

	"github.com/robalobadob/hanzi-game/internal/db"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	conn, err := db.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(conn)
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	u, err := r.Create(ctx, "  xiaoming ", "password123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Username != "xiaoming" || u.ID == "" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := r.Create(ctx, "XiaoMing", "password123"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	got, err := r.Authenticate(ctx, "XIAOMING", "password123")
	if err != nil || got.ID != u.ID {
		t.Fatalf("expected login, got %+v (%v)", got, err)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at parsed")
	}
	if _, err := r.Authenticate(ctx, "xiaoming", "wrong-password"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected failure on wrong password, got %v", err)
	}
	if _, err := r.FindByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateSignup(t *testing.T) {
	cases := []struct {
		user, pw string
		ok       bool
	}{
		{"ab", "password123", false},
		{"has space", "password123", false},
		{"li_hua", "short", false},
		{"li_hua", "password123", true},
	}
	for _, tc := range cases {
		err := ValidateSignup(tc.user, tc.pw)
		if (err == nil) != tc.ok {
			t.Fatalf("ValidateSignup(%q, %q): expected ok=%v, got %v", tc.user, tc.pw, tc.ok, err)
		}
		var ve *ValidationError
		if err != nil && !errors.As(err, &ve) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
	}
}
