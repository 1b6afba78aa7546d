package progress

import (
	"time"

	"github.com/robalobadob/hanzi-game/internal/words"
)

// LevelSummary is one row of the progress report.
type LevelSummary struct {
	Level        words.GameLevel `json:"level"`
	Unlocked     bool            `json:"unlocked"`
	Completed    bool            `json:"completed"`
	Score        int             `json:"score"`
	WordsLearned int             `json:"wordsLearned"`
	Completion   int             `json:"completion"`
}

// Summary is the derived view rendered by the progress page and report export.
type Summary struct {
	UserID               string                   `json:"userId"`
	CurrentLevel         string                   `json:"currentLevel"`
	TotalScore           int                      `json:"totalScore"`
	StreakDays           int                      `json:"streakDays"`
	LastPlayedAt         time.Time                `json:"lastPlayedAt"`
	OverallCompletion    int                      `json:"overallCompletion"`
	DifficultyCompletion map[words.Difficulty]int `json:"difficultyCompletion"`
	Levels               []LevelSummary           `json:"levels"`
	LearnedWords         []words.WordItem         `json:"learnedWords"`
	Achievements         []string                 `json:"achievements"`
}

// Summarize derives the report view of p.
func (t *Tracker) Summarize(p UserProgress) Summary {
	s := Summary{
		UserID:               p.UserID,
		CurrentLevel:         p.CurrentLevel,
		TotalScore:           p.TotalScore,
		StreakDays:           p.StreakDays,
		LastPlayedAt:         p.LastPlayedAt,
		OverallCompletion:    t.OverallCompletion(p),
		DifficultyCompletion: t.DifficultyCompletion(p),
		LearnedWords:         []words.WordItem{},
		Achievements:         append([]string{}, p.Achievements...),
	}
	for _, l := range t.catalog.Levels() {
		lp := p.LevelProgress[l.ID]
		s.Levels = append(s.Levels, LevelSummary{
			Level:        l,
			Unlocked:     t.IsUnlocked(p, l.ID),
			Completed:    lp.Completed,
			Score:        lp.Score,
			WordsLearned: lp.WordsLearned,
			Completion:   t.LevelCompletion(p, l.ID),
		})
	}
	for _, id := range p.CompletedWords {
		if w, ok := t.catalog.Word(id); ok {
			s.LearnedWords = append(s.LearnedWords, w)
		}
	}
	return s
}
