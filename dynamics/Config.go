// Package dynamics implements the training driver that fits an
// ensemble of probabilistic dynamics models to a logged transition
// dataset, selects the best-performing subset, and persists it.
package dynamics

import "fmt"

// Config describes one dynamics pretraining run.
type Config struct {
	// Dataset identification
	Task   string
	Level  string
	Amount int
	Seed   uint64

	// Model architecture
	HiddenUnits      int
	NbLayers         int
	EnsembleSize     int
	EnsembleSelected int

	// Optimization
	LearningRate float64
	OptimWD      float64
	BatchSize    int

	// Directory the model artifact is saved under
	DynamicsPath string
}

// Validate returns an error describing why the Config cannot be used
// for a training run, or nil if it can. Malformed configurations are
// fatal to a run.
func (c Config) Validate() error {
	if c.Task == "" {
		return fmt.Errorf("config: task must be non-empty")
	}
	if c.Amount <= 0 {
		return fmt.Errorf("config: amount must be positive")
	}
	if c.HiddenUnits <= 0 {
		return fmt.Errorf("config: hidden units must be positive")
	}
	if c.NbLayers <= 0 {
		return fmt.Errorf("config: number of layers must be positive")
	}
	if c.EnsembleSize <= 0 {
		return fmt.Errorf("config: ensemble size must be positive")
	}
	if c.EnsembleSelected <= 0 {
		return fmt.Errorf("config: ensemble selected must be positive")
	}
	if c.EnsembleSelected > c.EnsembleSize {
		return fmt.Errorf("config: cannot select %v members from an "+
			"ensemble of %v", c.EnsembleSelected, c.EnsembleSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("config: learning rate must be positive")
	}
	if c.OptimWD < 0 {
		return fmt.Errorf("config: weight decay must be non-negative")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch size must be positive")
	}
	return nil
}

// Result is the outcome of one training run: the validation loss of
// each finally-selected member, in selection order, the absolute path
// of the saved model artifact, and the number of epochs trained before
// validation performance stagnated. All are empty for a run that was
// short-circuited as known-unsupported.
type Result struct {
	Performance []float64
	Path        string
	Epochs      int
}
