package datasets

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/ssimonc/NeoRL/environment"
	"github.com/ssimonc/NeoRL/porl"
	"github.com/ssimonc/NeoRL/timestep"
	"github.com/ssimonc/NeoRL/transition"
)

// action magnitude used when an environment reports unbounded actions
const unboundedActionScale float64 = 1.0

// levelScales maps a difficulty level to the fraction of the action
// range a behavior policy uses. Wider random actions produce
// lower-quality logged data.
var levelScales = map[string]float64{
	Low:    1.0,
	Medium: 0.6,
	High:   0.3,
}

// RolloutLoader generates labeled transition buffers by rolling a
// seeded random behavior policy through a registered simulation
// environment. It validates the environment catalog and produces data
// for tasks that have no logged dataset on disk.
type RolloutLoader struct {
	seed uint64
}

// NewRolloutLoader returns a Loader that generates buffers from
// environment rollouts seeded by seed.
func NewRolloutLoader(seed uint64) *RolloutLoader {
	return &RolloutLoader{seed: seed}
}

// Load rolls a random policy through the task's environment until
// amount transitions have been collected. An unknown task or an
// environment whose simulator cannot be constructed makes the
// combination unavailable.
func (r *RolloutLoader) Load(task, level string,
	amount int) (*transition.Batch, error) {
	key := Key(task, level, amount)

	scale, ok := levelScales[level]
	if !ok {
		return nil, &DatasetError{Op: "load", Key: key,
			Err: fmt.Errorf("%w: no such difficulty level %q",
				errUnavailable, level)}
	}
	if amount <= 0 {
		return nil, &DatasetError{Op: "load", Key: key,
			Err: fmt.Errorf("%w: amount must be positive", errUnavailable)}
	}

	env, err := porl.Make(task, r.seed)
	if err != nil {
		return nil, &DatasetError{Op: "load", Key: key,
			Err: fmt.Errorf("%w: %v", errUnavailable, err)}
	}
	defer env.Close()

	policy, err := randomPolicy(env.ActionSpec(), scale, r.seed)
	if err != nil {
		return nil, &DatasetError{Op: "load", Key: key, Err: err}
	}

	batch, err := transition.NewBatch(env.ObservationSpec().Shape.Len(),
		env.ActionSpec().Shape.Len(), amount)
	if err != nil {
		return nil, &DatasetError{Op: "load", Key: key, Err: err}
	}

	step := env.CurrentTimeStep()
	for batch.Len() < amount {
		if step.Last() {
			step, err = env.Reset()
			if err != nil {
				return nil, &DatasetError{Op: "load", Key: key, Err: err}
			}
		}

		actionDims := env.ActionSpec().Shape.Len()
		action := mat.NewVecDense(actionDims, policy.Rand(nil))

		next, _, err := env.Step(action)
		if err != nil {
			return nil, &DatasetError{Op: "load", Key: key, Err: err}
		}

		if err := batch.Add(timestep.NewTransition(step, action,
			next)); err != nil {
			return nil, &DatasetError{Op: "load", Key: key, Err: err}
		}
		step = next
	}

	return batch, nil
}

// randomPolicy returns a uniform sampler over the action space scaled
// toward zero by scale.
func randomPolicy(spec environment.Spec, scale float64,
	seed uint64) (*distmv.Uniform, error) {
	if spec.Type != environment.Action {
		return nil, fmt.Errorf("randomPolicy: spec must describe actions")
	}

	bounds := make([]r1.Interval, spec.Shape.Len())
	for i := range bounds {
		low, high := spec.LowerBound.AtVec(i), spec.UpperBound.AtVec(i)
		if math.IsInf(low, -1) {
			low = -unboundedActionScale
		}
		if math.IsInf(high, 1) {
			high = unboundedActionScale
		}
		bounds[i] = r1.Interval{Min: low * scale, Max: high * scale}
	}

	return distmv.NewUniform(bounds, rand.NewSource(seed)), nil
}
