// Package progress derives scores, unlocks, completion percentages and
// streaks from a player's persisted progress record.
package progress

import "time"

// LevelProgress is the per-level counter block.
type LevelProgress struct {
	Score        int  `json:"score"`
	Completed    bool `json:"completed"`
	WordsLearned int  `json:"wordsLearned"`
}

// UserProgress is the persisted record, one per player.
//
// Invariants: TotalScore equals the sum of LevelProgress scores, and
// CompletedWords holds no duplicates.
type UserProgress struct {
	UserID         string                   `json:"userId"`
	CurrentLevel   string                   `json:"currentLevel"`
	TotalScore     int                      `json:"totalScore"`
	CompletedWords []string                 `json:"completedWords"`
	Achievements   []string                 `json:"achievements"`
	LastPlayedAt   time.Time                `json:"lastPlayedAt"`
	StreakDays     int                      `json:"streakDays"`
	LevelProgress  map[string]LevelProgress `json:"levelProgress"`
}

// HasLearned reports whether wordID is in the completed list.
func (p UserProgress) HasLearned(wordID string) bool {
	for _, id := range p.CompletedWords {
		if id == wordID {
			return true
		}
	}
	return false
}

func (p UserProgress) sumLevelScores() int {
	total := 0
	for _, lp := range p.LevelProgress {
		total += lp.Score
	}
	return total
}
