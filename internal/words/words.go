// internal/words/words.go
//
// Provides the vocabulary and level catalog for the game engine.
//
// Responsibilities:
//   - Load words and levels from environment-provided JSON files or fall back to the embedded defaults.
//   - Validate the catalog once at load time (unique ids, known tiers, non-decreasing thresholds).
//   - Supply lookups: Word, Level, LevelOrDefault, LevelIndex, Pool, CountByDifficulty, Stats.
//
// Initialization behavior (Load):
//   1. If WORDS_FILE is set, words are read from that file; otherwise from assets/words.json.
//   2. If LEVELS_FILE is set, levels are read from that file; otherwise from assets/levels.json.
//
// A Catalog is immutable after construction and safe for concurrent use.

package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/robalobadob/hanzi-game/assets"
)

// Catalog holds the static word and level tables.
type Catalog struct {
	words      []WordItem
	levels     []GameLevel
	wordIndex  map[string]int
	levelIndex map[string]int
	byTier     map[Difficulty][]WordItem
}

// Load builds a catalog from the given files, using the embedded defaults for
// any path left empty.
func Load(wordsPath, levelsPath string) (*Catalog, error) {
	wordsRaw, err := readOrEmbedded(wordsPath, assets.WordsJSON)
	if err != nil {
		return nil, fmt.Errorf("words: read words: %w", err)
	}
	levelsRaw, err := readOrEmbedded(levelsPath, assets.LevelsJSON)
	if err != nil {
		return nil, fmt.Errorf("words: read levels: %w", err)
	}
	return FromJSON(wordsRaw, levelsRaw)
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) { return Load("", "") }

func readOrEmbedded(path string, fallback func() ([]byte, error)) ([]byte, error) {
	if path == "" {
		return fallback()
	}
	return os.ReadFile(path)
}

// FromJSON decodes and validates a catalog from raw JSON arrays.
func FromJSON(wordsRaw, levelsRaw []byte) (*Catalog, error) {
	var ws []WordItem
	if err := json.Unmarshal(wordsRaw, &ws); err != nil {
		return nil, fmt.Errorf("words: decode words: %w", err)
	}
	var ls []GameLevel
	if err := json.Unmarshal(levelsRaw, &ls); err != nil {
		return nil, fmt.Errorf("words: decode levels: %w", err)
	}
	return New(ws, ls)
}

// New validates and indexes the given tables. Levels are kept in the order
// given, which is the intended progression order.
func New(ws []WordItem, ls []GameLevel) (*Catalog, error) {
	if len(ls) == 0 {
		return nil, errors.New("words: level list is empty")
	}
	c := &Catalog{
		words:      append([]WordItem(nil), ws...),
		levels:     append([]GameLevel(nil), ls...),
		wordIndex:  make(map[string]int, len(ws)),
		levelIndex: make(map[string]int, len(ls)),
		byTier:     make(map[Difficulty][]WordItem, len(Difficulties)),
	}
	for i, w := range c.words {
		if w.ID == "" || w.Word == "" {
			return nil, fmt.Errorf("words: word #%d missing id or text", i)
		}
		if !w.Difficulty.Valid() {
			return nil, fmt.Errorf("words: word %s has unknown difficulty %q", w.ID, w.Difficulty)
		}
		if _, dup := c.wordIndex[w.ID]; dup {
			return nil, fmt.Errorf("words: duplicate word id %s", w.ID)
		}
		c.wordIndex[w.ID] = i
		c.byTier[w.Difficulty] = append(c.byTier[w.Difficulty], w)
	}

	last, haveLast := 0, false
	for i, l := range c.levels {
		if l.ID == "" {
			return nil, fmt.Errorf("words: level #%d missing id", i)
		}
		if !l.Difficulty.Valid() {
			return nil, fmt.Errorf("words: level %s has unknown difficulty %q", l.ID, l.Difficulty)
		}
		if _, dup := c.levelIndex[l.ID]; dup {
			return nil, fmt.Errorf("words: duplicate level id %s", l.ID)
		}
		if min, ok := l.Threshold(); ok {
			if haveLast && min < last {
				return nil, fmt.Errorf("words: level %s threshold %d below previous %d", l.ID, min, last)
			}
			last, haveLast = min, true
		}
		c.levelIndex[l.ID] = i
	}
	return c, nil
}

// Word looks up a word by id.
func (c *Catalog) Word(id string) (WordItem, bool) {
	i, ok := c.wordIndex[id]
	if !ok {
		return WordItem{}, false
	}
	return c.words[i], true
}

// Level looks up a level by id.
func (c *Catalog) Level(id string) (GameLevel, bool) {
	i, ok := c.levelIndex[id]
	if !ok {
		return GameLevel{}, false
	}
	return c.levels[i], true
}

// LevelOrDefault returns the level for id, or the first level when id is unknown.
func (c *Catalog) LevelOrDefault(id string) GameLevel {
	if l, ok := c.Level(id); ok {
		return l
	}
	return c.levels[0]
}

// FirstLevel returns the entry level.
func (c *Catalog) FirstLevel() GameLevel { return c.levels[0] }

// LevelIndex returns the position of id in progression order, or -1.
func (c *Catalog) LevelIndex(id string) int {
	if i, ok := c.levelIndex[id]; ok {
		return i
	}
	return -1
}

// Levels returns a copy of the level table in progression order.
func (c *Catalog) Levels() []GameLevel { return append([]GameLevel(nil), c.levels...) }

// Words returns a copy of the word table.
func (c *Catalog) Words() []WordItem { return append([]WordItem(nil), c.words...) }

// Pool returns the words eligible for a level: those matching its difficulty,
// or the whole catalog when the level is unknown.
func (c *Catalog) Pool(levelID string) []WordItem {
	l, ok := c.Level(levelID)
	if !ok {
		return c.Words()
	}
	return append([]WordItem(nil), c.byTier[l.Difficulty]...)
}

// CountByDifficulty returns how many catalog words carry tier d.
func (c *Catalog) CountByDifficulty(d Difficulty) int { return len(c.byTier[d]) }

// Stats returns counts of loaded entries: (words, levels).
func (c *Catalog) Stats() (wordCount int, levelCount int) {
	return len(c.words), len(c.levels)
}
