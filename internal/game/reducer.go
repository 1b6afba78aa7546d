// internal/game/reducer.go
//
// Reduce is the pure transition function of the game state.
//
// State transitions:
//   - ready/completed/any → playing      (StartGame: word, counters, score and hints reset)
//   - playing → paused                   (PauseGame; ignored otherwise)
//   - paused → playing                   (ResumeGame; ignored otherwise)
//   - any → completed                    (EndGame)
//   - any → ready                        (ResetGame: back to InitialState on the given level)
//
// Timestamps travel inside the commands so the function stays deterministic.

package game

// Reduce applies cmd to s and returns the resulting state. It never fails;
// unknown commands leave the state unchanged.
func Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case StartGame:
		at := c.At
		s.Status = StatusPlaying
		s.CurrentLevel = c.LevelID
		s.Mode = c.Mode
		s.StartTime = &at
		s.EndTime = nil
		s.CurrentWordID = ""
		s.Score = 0
		s.CorrectAnswers = 0
		s.WrongAnswers = 0
		s.RemainingHints = HintsPerSession

	case PauseGame:
		if s.Status == StatusPlaying {
			s.Status = StatusPaused
		}

	case ResumeGame:
		if s.Status == StatusPaused {
			s.Status = StatusPlaying
		}

	case EndGame:
		at := c.At
		s.Status = StatusCompleted
		s.EndTime = &at

	case SetLevel:
		s.CurrentLevel = c.LevelID

	case SelectWord:
		s.CurrentWordID = c.WordID

	case CorrectAnswer:
		s.Score += c.Points
		s.CorrectAnswers++

	case WrongAnswer:
		s.WrongAnswers++

	case UseHint:
		if s.RemainingHints > 0 {
			s.RemainingHints--
		}

	case NextWord:
		s.CurrentWordID = ""

	case ResetGame:
		s = InitialState()
		if c.LevelID != "" {
			s.CurrentLevel = c.LevelID
		}
	}
	return s
}
