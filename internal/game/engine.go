// internal/game/engine.go
//
// Session engine for a single flashcard game.
// Responsibilities:
//   - Own one State and drive it exclusively through Reduce.
//   - Pick the active word uniformly from the level's difficulty pool.
//   - Check answers (trimmed, NFC-normalised, case-folded) and award points.
//   - Hand out hints while the per-session budget lasts.
//
// Notes:
//   - Randomness and time are injected (Picker, Clock) so tests are deterministic.
//   - A Session is safe for concurrent use; HTTP handlers share it through the store.
package game

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/robalobadob/hanzi-game/internal/words"
)

// Picker returns a uniformly distributed index in [0, n). n is always > 0.
type Picker interface {
	Intn(n int) int
}

// Clock reports the current time.
type Clock func() time.Time

// CryptoPicker draws indices from crypto/rand.
type CryptoPicker struct{}

// Intn implements Picker.
func (CryptoPicker) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Outcome classifies an answer submission.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeEmpty     Outcome = "empty" // nothing typed; no state change
)

// AnswerResult is returned by SubmitAnswer.
type AnswerResult struct {
	Outcome Outcome `json:"outcome"`
	Points  int     `json:"points"`
	WordID  string  `json:"wordId,omitempty"`
	LevelID string  `json:"levelId"`
}

// View is a read-only snapshot of a session for callers.
type View struct {
	ID            string          `json:"id"`
	State         State           `json:"state"`
	Word          *words.WordItem `json:"word"`
	AnswerCorrect *bool           `json:"answerCorrect"`
}

// Session is one in-progress or finished game.
type Session struct {
	ID    string
	Owner string

	mu            sync.Mutex
	state         State
	answerCorrect *bool
	lastActive    time.Time

	catalog *words.Catalog
	picker  Picker
	now     Clock
}

// Option customises a Session.
type Option func(*Session)

// WithPicker replaces the random source.
func WithPicker(p Picker) Option { return func(s *Session) { s.picker = p } }

// WithClock replaces the time source.
func WithClock(c Clock) Option { return func(s *Session) { s.now = c } }

// New constructs a session in the initial state.
func New(owner string, catalog *words.Catalog, opts ...Option) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Owner:   owner,
		state:   InitialState(),
		catalog: catalog,
		picker:  CryptoPicker{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.state.CurrentLevel = s.firstLevel()
	s.lastActive = s.now()
	return s
}

// BasePoints returns the points a correct answer is worth for a tier.
func BasePoints(d words.Difficulty) int {
	switch d {
	case words.Easy:
		return 10
	case words.Medium:
		return 20
	case words.Hard:
		return 30
	}
	return 0
}

// Points applies the mode multiplier (challenge ×1.5) to the tier's base points.
func Points(d words.Difficulty, m Mode) int {
	p := BasePoints(d)
	if m == ModeChallenge {
		p = p * 3 / 2
	}
	return p
}

// Normalize prepares answer text for comparison.
func Normalize(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

func (s *Session) dispatch(cmd Command) {
	s.state = Reduce(s.state, cmd)
	s.lastActive = s.now()
}

// Start begins play on levelID in mode and selects the first word.
func (s *Session) Start(levelID string, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answerCorrect = nil
	s.dispatch(StartGame{LevelID: levelID, Mode: mode, At: s.now()})
	s.pickWord()
}

// Pause moves playing → paused. Returns false when not playing.
func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.state.Status
	s.dispatch(PauseGame{})
	return before == StatusPlaying
}

// Resume moves paused → playing. Returns false when not paused.
func (s *Session) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.state.Status
	s.dispatch(ResumeGame{})
	return before == StatusPaused
}

// End marks the session completed and returns the final state.
func (s *Session) End() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(EndGame{At: s.now()})
	return s.state
}

// SelectLevel changes the current level without touching the score.
func (s *Session) SelectLevel(levelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(SetLevel{LevelID: levelID})
}

// SubmitAnswer checks text against the active word.
func (s *Session) SubmitAnswer(text string) AnswerResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := AnswerResult{LevelID: s.state.CurrentLevel}
	if strings.TrimSpace(text) == "" {
		res.Outcome = OutcomeEmpty
		return res
	}
	w, ok := s.activeWord()
	if !ok {
		res.Outcome = OutcomeIncorrect
		return res
	}
	res.WordID = w.ID

	correct := Normalize(text) == Normalize(w.Word)
	s.answerCorrect = &correct
	if !correct {
		res.Outcome = OutcomeIncorrect
		s.dispatch(WrongAnswer{})
		return res
	}
	res.Outcome = OutcomeCorrect
	res.Points = Points(w.Difficulty, s.state.Mode)
	s.dispatch(CorrectAnswer{Points: res.Points})
	return res
}

// UseHint consumes one hint and returns the active word's hint text.
// ok is false, with no state change, when hints are exhausted or no word is active.
func (s *Session) UseHint() (hint string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, active := s.activeWord()
	if !active || s.state.RemainingHints <= 0 {
		return "", false
	}
	s.dispatch(UseHint{})
	return w.Hint, true
}

// NextWord clears the active word and selects a fresh one from the pool.
func (s *Session) NextWord() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answerCorrect = nil
	s.dispatch(NextWord{})
	s.pickWord()
}

// Reset returns the session to its initial state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answerCorrect = nil
	s.dispatch(ResetGame{LevelID: s.firstLevel()})
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentWord returns the active word, if any.
func (s *Session) CurrentWord() (words.WordItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeWord()
}

// View returns a snapshot for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{ID: s.ID, State: s.state}
	if w, ok := s.activeWord(); ok {
		v.Word = &w
	}
	if s.answerCorrect != nil {
		c := *s.answerCorrect
		v.AnswerCorrect = &c
	}
	return v
}

// LastActive reports when the session last changed.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) firstLevel() string {
	if s.catalog == nil {
		return DefaultLevelID
	}
	return s.catalog.FirstLevel().ID
}

func (s *Session) activeWord() (words.WordItem, bool) {
	if s.state.CurrentWordID == "" {
		return words.WordItem{}, false
	}
	return s.catalog.Word(s.state.CurrentWordID)
}

// pickWord selects a word for the current level. An empty pool leaves no word active.
func (s *Session) pickWord() {
	pool := s.catalog.Pool(s.state.CurrentLevel)
	if len(pool) == 0 {
		return
	}
	i := s.picker.Intn(len(pool))
	if i < 0 || i >= len(pool) {
		i = 0
	}
	s.dispatch(SelectWord{WordID: pool[i].ID})
}
