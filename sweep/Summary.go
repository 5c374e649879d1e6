package sweep

import (
	"context"
	"database/sql"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// TrialRow is one row of the sweep summary table.
type TrialRow struct {
	Task        string
	Level       string
	Amount      int
	Seed        uint64
	Performance []float64
	Path        string
	Epochs      int
	Seconds     float64
	Error       string
}

// summary file names written under the sweep output directory
const (
	summaryFile   = "summary.bin"
	summaryDBFile = "summary.db"
)

// WriteSummary persists the sweep summary under dir, both as a
// gob-encoded table and as an SQLite database for ad-hoc querying.
func WriteSummary(dir string, rows []TrialRow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writeSummary: could not create output "+
			"directory: %v", err)
	}

	if err := writeGobSummary(filepath.Join(dir, summaryFile),
		rows); err != nil {
		return fmt.Errorf("writeSummary: %v", err)
	}

	if err := writeDBSummary(filepath.Join(dir, summaryDBFile),
		rows); err != nil {
		return fmt.Errorf("writeSummary: %v", err)
	}

	return nil
}

// LoadSummary reads back a gob summary written by WriteSummary
func LoadSummary(dir string) ([]TrialRow, error) {
	file, err := os.Open(filepath.Join(dir, summaryFile))
	if err != nil {
		return nil, fmt.Errorf("loadSummary: could not open summary: %v",
			err)
	}
	defer file.Close()

	var rows []TrialRow
	if err := gob.NewDecoder(file).Decode(&rows); err != nil {
		return nil, fmt.Errorf("loadSummary: could not decode summary: %v",
			err)
	}

	return rows, nil
}

// writeGobSummary encodes and saves the summary rows to path
func writeGobSummary(path string, rows []TrialRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create summary file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(rows); err != nil {
		return fmt.Errorf("could not encode summary: %v", err)
	}

	return nil
}

// writeDBSummary stores the summary rows in an SQLite database at path,
// replacing any table left by an earlier sweep
func writeDBSummary(path string, rows []TrialRow) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("could not open summary database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	_, err = db.ExecContext(ctx, `
		DROP TABLE IF EXISTS trials;
		CREATE TABLE trials (
			task TEXT NOT NULL,
			level TEXT NOT NULL,
			amount INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			performance TEXT NOT NULL,
			path TEXT NOT NULL,
			epochs INTEGER NOT NULL,
			seconds REAL NOT NULL,
			error TEXT NOT NULL,
			PRIMARY KEY (task, level, amount, seed)
		)
	`)
	if err != nil {
		return fmt.Errorf("could not create trials table: %v", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %v", err)
	}

	for _, row := range rows {
		performance, err := json.Marshal(row.Performance)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("could not encode performance: %v", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO trials
				(task, level, amount, seed, performance, path, epochs,
				seconds, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, row.Task, row.Level, row.Amount, row.Seed, string(performance),
			row.Path, row.Epochs, row.Seconds, row.Error)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("could not insert trial row: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit summary: %v", err)
	}

	return nil
}
