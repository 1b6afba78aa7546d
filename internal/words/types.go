// internal/words/types.go
//
// Catalog entry types for the vocabulary game.
// Defines:
//   - Difficulty: the tier used to bucket vocabulary, scale points and gate levels.
//   - WordItem: one immutable flashcard.
//   - GameLevel: one immutable level with an optional minimum cumulative score.

package words

import "fmt"

// Difficulty is one of easy / medium / hard.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every tier in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// WordItem is a single vocabulary entry.
type WordItem struct {
	ID         string     `json:"id"`
	Word       string     `json:"word"`    // canonical answer text (characters)
	Pinyin     string     `json:"pinyin"`  // phonetic reading with tone marks
	Meaning    string     `json:"meaning"`
	Difficulty Difficulty `json:"difficulty"`
	Hint       string     `json:"hint,omitempty"`
	Category   string     `json:"category,omitempty"`
}

// GameLevel is a named, ordered content bucket.
// MinScore is nil when the level has no gate.
type GameLevel struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	WordCount   int        `json:"wordCount"`
	MinScore    *int       `json:"minScore,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
}

// Threshold returns the level's minimum score and whether one is set.
func (l GameLevel) Threshold() (int, bool) {
	if l.MinScore == nil {
		return 0, false
	}
	return *l.MinScore, true
}

func (l GameLevel) String() string {
	return fmt.Sprintf("%s(%s)", l.ID, l.Difficulty)
}
