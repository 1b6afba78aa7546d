// Package report renders a player's progress summary as an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/robalobadob/hanzi-game/internal/progress"
	"github.com/robalobadob/hanzi-game/internal/words"
)

const (
	SheetSummary = "Summary"
	SheetLevels  = "Levels"
	SheetWords   = "Words"
)

// Build assembles the three-sheet workbook for s. Callers must Close it.
func Build(s progress.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetLevels, SheetWords} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	if err := writeRows(f, SheetSummary, summaryRows(s)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, SheetLevels, levelRows(s.Levels)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, SheetWords, wordRows(s.LearnedWords)); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 24)
	_ = f.SetColWidth(SheetWords, "D", "D", 28)
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, s progress.Summary) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func summaryRows(s progress.Summary) [][]any {
	last := ""
	if !s.LastPlayedAt.IsZero() {
		last = s.LastPlayedAt.UTC().Format(time.RFC3339)
	}
	rows := [][]any{
		{"Player", s.UserID},
		{"Current level", s.CurrentLevel},
		{"Total score", s.TotalScore},
		{"Streak days", s.StreakDays},
		{"Last played", last},
		{"Overall completion %", s.OverallCompletion},
	}
	for _, d := range words.Difficulties {
		rows = append(rows, []any{fmt.Sprintf("%s completion %%", d), s.DifficultyCompletion[d]})
	}
	return rows
}

func levelRows(levels []progress.LevelSummary) [][]any {
	rows := [][]any{{"Level", "Name", "Difficulty", "Unlocked", "Completed", "Score", "Words learned", "Completion %"}}
	for _, l := range levels {
		rows = append(rows, []any{
			l.Level.ID, l.Level.Name, string(l.Level.Difficulty),
			l.Unlocked, l.Completed, l.Score, l.WordsLearned, l.Completion,
		})
	}
	return rows
}

func wordRows(ws []words.WordItem) [][]any {
	rows := [][]any{{"Word", "Pinyin", "Difficulty", "Meaning", "Category"}}
	for _, w := range ws {
		rows = append(rows, []any{w.Word, w.Pinyin, string(w.Difficulty), w.Meaning, w.Category})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
