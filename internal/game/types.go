// internal/game/types.go
//
// Core type definitions for the flashcard game engine.
// Defines:
//   - Status / Mode: session lifecycle and scoring mode.
//   - State: the value transformed by Reduce.
//   - Command: the closed set of named actions Reduce understands.

package game

import "time"

// Status is the coarse lifecycle position of a session.
type Status string

const (
	StatusReady     Status = "ready"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Mode selects the scoring rules.
type Mode string

const (
	ModePractice  Mode = "practice"
	ModeChallenge Mode = "challenge"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModePractice || m == ModeChallenge }

// HintsPerSession is the number of hints granted at start and on reset.
const HintsPerSession = 3

// DefaultLevelID is the level a fresh state points at when no catalog says otherwise.
const DefaultLevelID = "level1"

// State is the full game state. Only Reduce produces new values of it.
type State struct {
	Status         Status     `json:"status"`
	CurrentWordID  string     `json:"currentWordId,omitempty"` // "" when no word is active
	Score          int        `json:"score"`
	CurrentLevel   string     `json:"currentLevel"`
	RemainingHints int        `json:"remainingHints"`
	CorrectAnswers int        `json:"correctAnswers"`
	WrongAnswers   int        `json:"wrongAnswers"`
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	Mode           Mode       `json:"gameMode"`
}

// InitialState returns the state a session begins in and returns to on reset.
func InitialState() State {
	return State{
		Status:         StatusReady,
		CurrentLevel:   DefaultLevelID,
		RemainingHints: HintsPerSession,
		Mode:           ModePractice,
	}
}

// Command is a named state transition. The set of implementations is closed.
type Command interface{ command() }

// StartGame begins a session on a level in a mode.
type StartGame struct {
	LevelID string
	Mode    Mode
	At      time.Time
}

type (
	PauseGame     struct{}
	ResumeGame    struct{}
	EndGame       struct{ At time.Time }
	SetLevel      struct{ LevelID string }
	SelectWord    struct{ WordID string }
	CorrectAnswer struct{ Points int }
	WrongAnswer   struct{}
	UseHint       struct{}
	NextWord      struct{}
)

// ResetGame returns to the initial state. LevelID, when set, replaces the
// default starting level (catalogs need not have a "level1").
type ResetGame struct {
	LevelID string
}

func (StartGame) command()     {}
func (PauseGame) command()     {}
func (ResumeGame) command()    {}
func (EndGame) command()       {}
func (SetLevel) command()      {}
func (SelectWord) command()    {}
func (CorrectAnswer) command() {}
func (WrongAnswer) command()   {}
func (UseHint) command()       {}
func (NextWord) command()      {}
func (ResetGame) command()     {}
