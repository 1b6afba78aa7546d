package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/robalobadob/hanzi-game/internal/progress"
	"github.com/robalobadob/hanzi-game/internal/words"
)

func sampleSummary(t *testing.T) progress.Summary {
	t.Helper()
	c, err := words.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	tr := progress.NewTracker(c, time.UTC)
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	p := tr.New("guest-7", now)
	tr.UpdateScore(&p, "level1", 120, now)
	tr.MarkWordLearned(&p, "1", "level1", now)
	tr.MarkWordLearned(&p, "11", "level2", now)
	return tr.Summarize(p)
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleSummary(t)); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetSummary {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	if v, _ := f.GetCellValue(SheetSummary, "B1"); v != "guest-7" {
		t.Fatalf("expected player guest-7, got %q", v)
	}
	if v, _ := f.GetCellValue(SheetSummary, "B3"); v != "120" {
		t.Fatalf("expected total 120, got %q", v)
	}

	levels, err := f.GetRows(SheetLevels)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(levels) != 6 || levels[2][0] != "level2" || levels[2][3] != "TRUE" {
		t.Fatalf("unexpected level rows %v", levels)
	}

	ws, _ := f.GetRows(SheetWords)
	if len(ws) != 3 || ws[1][0] != "人" || ws[2][0] != "学校" {
		t.Fatalf("unexpected word rows %v", ws)
	}
}

func TestEmptySummary(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, progress.Summary{UserID: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(SheetSummary, "B5"); v != "" {
		t.Fatalf("expected blank last played, got %q", v)
	}
}
