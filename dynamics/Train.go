package dynamics

import (
	"fmt"
	"math"
	"path/filepath"

	"golang.org/x/exp/rand"

	"github.com/ssimonc/NeoRL/datasets"
	"github.com/ssimonc/NeoRL/model"
	"github.com/ssimonc/NeoRL/transition"
)

// number of consecutive epochs without an improving member after which
// training stops
const stagnationLimit int = 5

// Train fits an ensemble of probabilistic dynamics models to the
// transition dataset described by cfg, selects the best-performing
// subset, persists the full ensemble, and returns the selected
// members' validation losses along with the artifact path.
//
// Train fails fast when the loader cannot produce the requested
// dataset: no partial model is saved. The one exception is the
// finance dataset at the 10000-transition budget, which is known to be
// permanently unavailable upstream; that combination short-circuits
// with an empty Result before the loader, RNG, or model are touched.
func Train(cfg Config, loader datasets.Loader) (Result, error) {
	if cfg.Task == "finance" && cfg.Amount == 10000 {
		return Result{Performance: []float64{}, Path: ""}, nil
	}

	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("train: %v", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	buffer, err := loader.Load(cfg.Task, cfg.Level, cfg.Amount)
	if err != nil {
		return Result{}, fmt.Errorf("train: could not load dataset: %v", err)
	}

	train, val := buffer.Split(rng)

	valIndices := make([]int, val.Len())
	for i := range valIndices {
		valIndices[i] = i
	}
	valInput := val.Input(valIndices)
	valTarget := val.Target(valIndices)

	ensemble, err := model.New(buffer.ObsDims(), buffer.ActionDims(),
		cfg.HiddenUnits, cfg.NbLayers, cfg.EnsembleSize, cfg.BatchSize,
		val.Len(), cfg.LearningRate, cfg.OptimWD, rng)
	if err != nil {
		return Result{}, fmt.Errorf("train: could not create ensemble: %v",
			err)
	}

	valLosses := make([]float64, cfg.EnsembleSize)
	for i := range valLosses {
		valLosses[i] = math.Inf(1)
	}

	cnt := 0
	epochs := 0
	for {
		epochs++
		for i := 0; i < cfg.EnsembleSize; i++ {
			// Each member draws its own bootstrap sample; independent
			// draws are the source of ensemble diversity
			idxs := bootstrapMinibatchIndices(train, cfg.BatchSize, rng)
			for _, batch := range transition.Minibatches(idxs,
				cfg.BatchSize) {
				err := ensemble.TrainStep(i, train.Input(batch),
					train.Target(batch))
				if err != nil {
					return Result{}, fmt.Errorf("train: %v", err)
				}
			}
		}

		newValLosses, err := ensemble.Evaluate(valInput, valTarget)
		if err != nil {
			return Result{}, fmt.Errorf("train: %v", err)
		}

		var indexes []int
		for i, newLoss := range newValLosses {
			if newLoss < valLosses[i] {
				indexes = append(indexes, i)
				valLosses[i] = newLoss
			}
		}

		if len(indexes) > 0 {
			ensemble.UpdateSave(indexes)
			cnt = 0
		} else {
			cnt++
		}

		if cnt >= stagnationLimit {
			break
		}
	}

	indexes := selectBestIndexes(valLosses, cfg.EnsembleSelected)
	if err := ensemble.SetSelect(indexes); err != nil {
		return Result{}, fmt.Errorf("train: %v", err)
	}

	performance, err := ensemble.EvaluateSelected(valInput, valTarget)
	if err != nil {
		return Result{}, fmt.Errorf("train: %v", err)
	}

	path, err := ArtifactPath(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("train: %v", err)
	}
	if err := ensemble.Save(path); err != nil {
		return Result{}, fmt.Errorf("train: could not save artifact: %v", err)
	}

	return Result{Performance: performance, Path: path, Epochs: epochs}, nil
}

// ArtifactPath returns the absolute path the model artifact of a run
// is saved at.
func ArtifactPath(cfg Config) (string, error) {
	name := fmt.Sprintf("%s-%s-%d-%d.pt", cfg.Task, cfg.Level, cfg.Amount,
		cfg.Seed)

	path, err := filepath.Abs(filepath.Join(cfg.DynamicsPath, name))
	if err != nil {
		return "", fmt.Errorf("artifactPath: %v", err)
	}
	return path, nil
}

// bootstrapMinibatchIndices draws a member's bootstrap sample and pads
// it to a whole number of minibatches by drawing further indices with
// replacement, so every minibatch has exactly batchSize rows. Padding
// draws come from the same distribution as the bootstrap itself.
func bootstrapMinibatchIndices(train *transition.Batch, batchSize int,
	rng *rand.Rand) []int {
	idxs := train.Bootstrap(rng)
	for len(idxs)%batchSize != 0 {
		idxs = append(idxs, rng.Intn(train.Len()))
	}
	return idxs
}
