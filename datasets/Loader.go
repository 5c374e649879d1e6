// Package datasets loads fixed buffers of logged environment
// transitions keyed by task, difficulty level, and sample budget.
package datasets

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssimonc/NeoRL/transition"
)

// Difficulty levels a dataset can be logged at. The level describes the
// quality of the behavior policy that generated the data.
const (
	Low    string = "low"
	Medium string = "medium"
	High   string = "high"
)

// Loader produces the full transition buffer for a task, level, and
// sample budget. Implementations return an error for which
// IsUnavailable reports true when the requested combination cannot be
// produced.
type Loader interface {
	Load(task, level string, amount int) (*transition.Batch, error)
}

// FileLoader loads transition buffers from gob files under a root
// directory, one file per (task, level, amount) combination.
type FileLoader struct {
	root string
}

// NewFileLoader returns a Loader reading buffers below root
func NewFileLoader(root string) *FileLoader {
	return &FileLoader{root: root}
}

// Load reads the buffer for the given task, level, and amount. A
// missing or unreadable file makes the combination unavailable.
func (f *FileLoader) Load(task, level string,
	amount int) (*transition.Batch, error) {
	key := Key(task, level, amount)

	file, err := os.Open(filepath.Join(f.root, key+".bin"))
	if err != nil {
		return nil, &DatasetError{Op: "load", Key: key,
			Err: fmt.Errorf("%w: %v", errUnavailable, err)}
	}
	defer file.Close()

	var batch transition.Batch
	if err := gob.NewDecoder(file).Decode(&batch); err != nil {
		return nil, &DatasetError{Op: "load", Key: key,
			Err: fmt.Errorf("%w: %v", errUnavailable, err)}
	}

	if batch.Len() != amount {
		return nil, &DatasetError{Op: "load", Key: key,
			Err: fmt.Errorf("%w: buffer holds %v transitions, want %v",
				errUnavailable, batch.Len(), amount)}
	}

	return &batch, nil
}

// Save writes a buffer below root so that a later Load with the same
// key returns it.
func (f *FileLoader) Save(task, level string, amount int,
	batch *transition.Batch) error {
	key := Key(task, level, amount)

	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("save: could not create dataset root: %v", err)
	}

	file, err := os.Create(filepath.Join(f.root, key+".bin"))
	if err != nil {
		return fmt.Errorf("save: could not create dataset file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(batch); err != nil {
		return fmt.Errorf("save: could not encode buffer: %v", err)
	}

	return nil
}

// Key returns the canonical name of a dataset combination
func Key(task, level string, amount int) string {
	return fmt.Sprintf("%s-%s-%d", task, level, amount)
}
