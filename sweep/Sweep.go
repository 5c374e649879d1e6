// Package sweep runs grids of dynamics pretraining trials and
// aggregates their results into a tabular summary on disk.
package sweep

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ssimonc/NeoRL/datasets"
	"github.com/ssimonc/NeoRL/dynamics"
	"github.com/ssimonc/NeoRL/utils/progressbar"
)

// Seeds swept by default
var DefaultSeeds = []uint64{7, 42, 210}

// Tasks that get the wide dynamics model; the MuJoCo tasks use the
// narrow one
var wideTasks = map[string]bool{
	"ib":        true,
	"finance":   true,
	"citylearn": true,
}

// hidden widths of the two dynamics model variants
const (
	wideHiddenUnits   int = 1024
	narrowHiddenUnits int = 256
)

// Config describes a sweep: the grid of datasets to pretrain on and
// the hyperparameters shared by every trial.
type Config struct {
	Tasks   []string
	Levels  []string
	Amounts []int
	Seeds   []uint64

	NbLayers         int
	EnsembleSize     int
	EnsembleSelected int
	LearningRate     float64
	OptimWD          float64
	BatchSize        int

	// Directory trial artifacts and the sweep summary are written
	// under
	OutputDir string

	// Number of trials run concurrently; trials share nothing, so any
	// positive count is safe
	Workers int
}

// Validate returns an error describing why the sweep cannot run
func (c Config) Validate() error {
	if len(c.Tasks) == 0 || len(c.Levels) == 0 || len(c.Amounts) == 0 {
		return fmt.Errorf("config: task, level, and amount grids must be " +
			"non-empty")
	}
	if len(c.Seeds) == 0 {
		return fmt.Errorf("config: seed grid must be non-empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config: output directory must be non-empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: worker count must be positive")
	}
	return nil
}

// Trials expands the sweep grid into one training configuration per
// (task, level, amount, seed) combination.
func (c Config) Trials() []dynamics.Config {
	trials := make([]dynamics.Config, 0,
		len(c.Tasks)*len(c.Levels)*len(c.Amounts)*len(c.Seeds))

	for _, task := range c.Tasks {
		hiddenUnits := narrowHiddenUnits
		if wideTasks[task] {
			hiddenUnits = wideHiddenUnits
		}

		for _, level := range c.Levels {
			for _, amount := range c.Amounts {
				for _, seed := range c.Seeds {
					trials = append(trials, dynamics.Config{
						Task:             task,
						Level:            level,
						Amount:           amount,
						Seed:             seed,
						HiddenUnits:      hiddenUnits,
						NbLayers:         c.NbLayers,
						EnsembleSize:     c.EnsembleSize,
						EnsembleSelected: c.EnsembleSelected,
						LearningRate:     c.LearningRate,
						OptimWD:          c.OptimWD,
						BatchSize:        c.BatchSize,
						DynamicsPath:     c.OutputDir,
					})
				}
			}
		}
	}

	return trials
}

// Run executes every trial of the sweep on a pool of worker goroutines
// and returns one summary row per trial, in grid order. Individual
// trial failures are recorded in their rows; Run only fails when the
// sweep itself is misconfigured.
func Run(c Config, loader datasets.Loader) ([]TrialRow, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("run: %v", err)
	}

	trials := c.Trials()
	rows := make([]TrialRow, len(trials))

	bar := progressbar.New(40, len(trials), time.Second)
	bar.Display()
	defer bar.Close()

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < c.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rows[i] = runTrial(trials[i], loader)
				bar.Increment()
			}
		}()
	}

	for i := range trials {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return rows, nil
}

// runTrial runs one training configuration and converts its outcome to
// a summary row
func runTrial(cfg dynamics.Config, loader datasets.Loader) TrialRow {
	start := time.Now()
	result, err := dynamics.Train(cfg, loader)
	elapsed := time.Since(start).Seconds()

	row := TrialRow{
		Task:        cfg.Task,
		Level:       cfg.Level,
		Amount:      cfg.Amount,
		Seed:        cfg.Seed,
		Performance: result.Performance,
		Path:        result.Path,
		Epochs:      result.Epochs,
		Seconds:     elapsed,
	}

	if err != nil {
		row.Error = err.Error()
		log.Printf("trial %v-%v-%v-%v failed: %v", cfg.Task, cfg.Level,
			cfg.Amount, cfg.Seed, err)
	}

	return row
}
