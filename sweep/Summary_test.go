package sweep

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func testRows() []TrialRow {
	return []TrialRow{
		{
			Task:        "ib",
			Level:       "low",
			Amount:      100,
			Seed:        7,
			Performance: []float64{0.25, 0.5},
			Path:        "/tmp/ib-low-100-7.pt",
			Epochs:      18,
			Seconds:     12.5,
		},
		{
			Task:    "finance",
			Level:   "high",
			Amount:  10000,
			Seed:    42,
			Seconds: 0.01,
		},
		{
			Task:    "citylearn",
			Level:   "medium",
			Amount:  1000,
			Seed:    210,
			Seconds: 3.25,
			Error:   "could not load dataset",
		},
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rows := testRows()

	if err := WriteSummary(dir, rows); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadSummary(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(loaded) != len(rows) {
		t.Fatalf("loaded %v rows, want %v", len(loaded), len(rows))
	}
	for i, row := range rows {
		got := loaded[i]
		if got.Task != row.Task || got.Level != row.Level ||
			got.Amount != row.Amount || got.Seed != row.Seed {
			t.Errorf("row %v identifies trial %v-%v-%v-%v, want "+
				"%v-%v-%v-%v", i, got.Task, got.Level, got.Amount,
				got.Seed, row.Task, row.Level, row.Amount, row.Seed)
		}
		if got.Path != row.Path || got.Error != row.Error ||
			got.Epochs != row.Epochs || got.Seconds != row.Seconds {
			t.Errorf("row %v lost outcome fields: %+v", i, got)
		}
		if len(got.Performance) != len(row.Performance) {
			t.Errorf("row %v has %v losses, want %v", i,
				len(got.Performance), len(row.Performance))
			continue
		}
		for j := range row.Performance {
			if got.Performance[j] != row.Performance[j] {
				t.Errorf("row %v loss %v = %v, want %v", i, j,
					got.Performance[j], row.Performance[j])
			}
		}
	}
}

func TestSummaryDatabaseIsQueryable(t *testing.T) {
	dir := t.TempDir()
	rows := testRows()

	if err := WriteSummary(dir, rows); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, summaryDBFile))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	err = db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM trials").Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != len(rows) {
		t.Errorf("trials table holds %v rows, want %v", count, len(rows))
	}

	var errMsg string
	err = db.QueryRowContext(context.Background(),
		"SELECT error FROM trials WHERE task = ? AND seed = ?",
		"citylearn", 210).Scan(&errMsg)
	if err != nil {
		t.Fatal(err)
	}
	if errMsg != "could not load dataset" {
		t.Errorf("got recorded error %q", errMsg)
	}
}

// Re-running a sweep into the same directory replaces the summary
func TestWriteSummaryOverwrites(t *testing.T) {
	dir := t.TempDir()

	if err := WriteSummary(dir, testRows()); err != nil {
		t.Fatal(err)
	}
	if err := WriteSummary(dir, testRows()[:1]); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadSummary(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Errorf("loaded %v rows after overwrite, want 1", len(loaded))
	}
}
