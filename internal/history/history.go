// internal/history/history.go
//
// Finished-game history backed by the games table.
// Responsibilities:
//   - Record a row when a session ends.
//   - List the latest games for an owner.
//   - Re-key guest games to an account after signup/login.

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DefaultLimit caps Mine when the caller passes no limit.
const DefaultLimit = 50

// Game is one finished session.
type Game struct {
	ID             string `db:"id" json:"id"`
	OwnerID        string `db:"owner_id" json:"-"`
	LevelID        string `db:"level_id" json:"levelId"`
	Mode           string `db:"mode" json:"mode"`
	Score          int    `db:"score" json:"score"`
	CorrectAnswers int    `db:"correct_answers" json:"correctAnswers"`
	WrongAnswers   int    `db:"wrong_answers" json:"wrongAnswers"`
	StartedAt      string `db:"started_at" json:"startedAt"`
	EndedAt        string `db:"ended_at" json:"endedAt"`
}

// Repo wraps the games table.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a Repo.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// FormatTime renders timestamps the way rows store them.
func FormatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// Record inserts g; re-recording the same id overwrites the earlier row.
func (r *Repo) Record(ctx context.Context, g Game) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO games (id, owner_id, level_id, mode, score, correct_answers, wrong_answers, started_at, ended_at)
		VALUES (:id, :owner_id, :level_id, :mode, :score, :correct_answers, :wrong_answers, :started_at, :ended_at)
		ON CONFLICT (id) DO UPDATE SET
			score = excluded.score,
			correct_answers = excluded.correct_answers,
			wrong_answers = excluded.wrong_answers,
			ended_at = excluded.ended_at`, g)
	if err != nil {
		return fmt.Errorf("record game %s: %w", g.ID, err)
	}
	return nil
}

// Mine lists owner's games, newest first.
func (r *Repo) Mine(ctx context.Context, owner string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := []Game{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, owner_id, level_id, mode, score, correct_answers, wrong_answers, started_at, ended_at
		FROM games WHERE owner_id = ? ORDER BY ended_at DESC, id LIMIT ?`), owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return out, nil
}

// ClaimOwner moves every game of from onto to.
func (r *Repo) ClaimOwner(ctx context.Context, from, to string) (int64, error) {
	if from == "" || to == "" || from == to {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE games SET owner_id = ? WHERE owner_id = ?`), to, from)
	if err != nil {
		return 0, fmt.Errorf("claim games: %w", err)
	}
	return res.RowsAffected()
}
