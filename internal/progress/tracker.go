package progress

import (
	"math"
	"time"

	"github.com/robalobadob/hanzi-game/internal/daily"
	"github.com/robalobadob/hanzi-game/internal/words"
)

// Tracker applies the progress rules for one catalog. Its methods operate on
// a record in place and never fail; unknown ids are ignored.
type Tracker struct {
	catalog *words.Catalog
	loc     *time.Location
}

// NewTracker constructs a Tracker. Calendar days for streaks are taken in loc
// (time.Local when nil).
func NewTracker(catalog *words.Catalog, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{catalog: catalog, loc: loc}
}

// Catalog returns the catalog the tracker was built with.
func (t *Tracker) Catalog() *words.Catalog { return t.catalog }

// New returns a fresh record with a zeroed entry per level.
func (t *Tracker) New(userID string, now time.Time) UserProgress {
	p := UserProgress{
		UserID:         userID,
		CurrentLevel:   t.catalog.FirstLevel().ID,
		CompletedWords: []string{},
		Achievements:   []string{},
		LastPlayedAt:   now,
		LevelProgress:  make(map[string]LevelProgress),
	}
	t.Repair(&p)
	return p
}

// Repair restores the record invariants after decoding: every catalog level
// has an entry, completed words are unique, the total matches the level sum.
func (t *Tracker) Repair(p *UserProgress) {
	if p.LevelProgress == nil {
		p.LevelProgress = make(map[string]LevelProgress)
	}
	for _, l := range t.catalog.Levels() {
		if _, ok := p.LevelProgress[l.ID]; !ok {
			p.LevelProgress[l.ID] = LevelProgress{}
		}
	}
	if p.CompletedWords == nil {
		p.CompletedWords = []string{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	seen := make(map[string]struct{}, len(p.CompletedWords))
	uniq := p.CompletedWords[:0]
	for _, id := range p.CompletedWords {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	p.CompletedWords = uniq
	if t.catalog.LevelIndex(p.CurrentLevel) < 0 {
		p.CurrentLevel = t.catalog.FirstLevel().ID
	}
	p.TotalScore = p.sumLevelScores()
}

// UpdateScore adds delta to the level's score and recomputes the total as
// the sum over all levels. Unknown levels are ignored.
func (t *Tracker) UpdateScore(p *UserProgress, levelID string, delta int, now time.Time) {
	if lp, ok := p.LevelProgress[levelID]; ok {
		lp.Score += delta
		p.LevelProgress[levelID] = lp
	}
	p.TotalScore = p.sumLevelScores()
	p.LastPlayedAt = now
}

// MarkWordLearned inserts wordID into the completed set. The level's
// words-learned counter moves only on first insertion. Reports whether the
// word was new.
func (t *Tracker) MarkWordLearned(p *UserProgress, wordID, levelID string, now time.Time) bool {
	if p.HasLearned(wordID) {
		return false
	}
	if lp, ok := p.LevelProgress[levelID]; ok {
		lp.WordsLearned++
		p.LevelProgress[levelID] = lp
	}
	p.CompletedWords = append(p.CompletedWords, wordID)
	p.LastPlayedAt = now
	return true
}

// IsUnlocked reports whether a level's gate is open: no threshold, or the
// total score meets it. Levels missing from the catalog count as open.
func (t *Tracker) IsUnlocked(p UserProgress, levelID string) bool {
	l, ok := t.catalog.Level(levelID)
	if !ok {
		return true
	}
	min, set := l.Threshold()
	return !set || p.TotalScore >= min
}

// CheckAndUnlock moves CurrentLevel forward to the last unlocked,
// not-yet-completed level that comes after it. Returns the new level and
// whether it changed.
func (t *Tracker) CheckAndUnlock(p *UserProgress) (string, bool) {
	highest := p.CurrentLevel
	highestIdx := t.catalog.LevelIndex(highest)
	for i, l := range t.catalog.Levels() {
		if p.LevelProgress[l.ID].Completed {
			continue
		}
		if t.IsUnlocked(*p, l.ID) && i > highestIdx {
			highest, highestIdx = l.ID, i
		}
	}
	if highest == p.CurrentLevel {
		return highest, false
	}
	p.CurrentLevel = highest
	return highest, true
}

// CompleteLevel flags the level completed and re-runs the unlock check.
func (t *Tracker) CompleteLevel(p *UserProgress, levelID string) (string, bool) {
	if lp, ok := p.LevelProgress[levelID]; ok {
		lp.Completed = true
		p.LevelProgress[levelID] = lp
	}
	return t.CheckAndUnlock(p)
}

// LevelCompletion is words learned in the level over catalog words of its
// difficulty, as a rounded percentage. 0 when either side is missing.
func (t *Tracker) LevelCompletion(p UserProgress, levelID string) int {
	l, ok := t.catalog.Level(levelID)
	if !ok {
		return 0
	}
	lp, ok := p.LevelProgress[levelID]
	if !ok {
		return 0
	}
	return percent(lp.WordsLearned, t.catalog.CountByDifficulty(l.Difficulty))
}

// OverallCompletion is distinct completed words over catalog size.
func (t *Tracker) OverallCompletion(p UserProgress) int {
	total, _ := t.catalog.Stats()
	return percent(len(p.CompletedWords), total)
}

// DifficultyCompletion reports, per tier, the share of that tier's catalog
// words present in the completed list.
func (t *Tracker) DifficultyCompletion(p UserProgress) map[words.Difficulty]int {
	learned := make(map[words.Difficulty]int, len(words.Difficulties))
	for _, id := range p.CompletedWords {
		if w, ok := t.catalog.Word(id); ok {
			learned[w.Difficulty]++
		}
	}
	out := make(map[words.Difficulty]int, len(words.Difficulties))
	for _, d := range words.Difficulties {
		out[d] = percent(learned[d], t.catalog.CountByDifficulty(d))
	}
	return out
}

// UpdateStreak compares the last-played calendar day with today's:
// one day later extends the streak, the same day leaves it, anything else
// restarts it at 1. Reports whether the record changed.
func (t *Tracker) UpdateStreak(p *UserProgress, now time.Time) bool {
	switch daily.DaysBetween(p.LastPlayedAt, now, t.loc) {
	case 0:
		return false
	case 1:
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	p.LastPlayedAt = now
	return true
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
