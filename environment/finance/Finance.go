// Package finance implements a single-asset trading environment. The
// asset price follows a seeded geometric random walk; an agent holds a
// position in [-1, 1] (short to long) and is rewarded with the
// mark-to-market profit of its position minus transaction costs.
//
// State features consist of the most recent log returns, the current
// normalized price, and the current position. Actions are continuous
// and 1-dimensional, giving the target position.
package finance

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ssimonc/NeoRL/environment"
	"github.com/ssimonc/NeoRL/timestep"
	"github.com/ssimonc/NeoRL/utils/floatutils"
)

// default market constants
const (
	MaxAction float64 = 1.0
	MinAction float64 = -MaxAction

	returnWindow    int     = 4
	drift           float64 = 0.0002
	volatility      float64 = 0.01
	transactionCost float64 = 0.001
	initialPrice    float64 = 1.0

	ActionDims      int = 1
	ObservationDims int = returnWindow + 2
)

// Finance implements the trading environment. Finance implements the
// environment.Environment interface.
type Finance struct {
	ender environment.Ender

	price    float64
	returns  []float64
	position float64

	noise    distuv.Normal
	lastStep timestep.TimeStep
	discount float64
}

// New returns a new trading environment along with the first timestep.
// Episodes are cut off after cutoff steps.
func New(cutoff int, discount float64, seed uint64) (environment.Environment,
	timestep.TimeStep, error) {
	if cutoff <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: episode cutoff " +
			"must be positive")
	}

	noise := distuv.Normal{
		Mu:    drift,
		Sigma: volatility,
		Src:   rand.NewSource(seed),
	}

	env := &Finance{
		ender:    environment.NewStepLimit(cutoff),
		returns:  make([]float64, returnWindow),
		noise:    noise,
		discount: discount,
	}

	step, err := env.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: could not reset: %v",
			err)
	}

	return env, step, nil
}

// Reset resets the market to its initial price with a flat position
func (f *Finance) Reset() (timestep.TimeStep, error) {
	f.price = initialPrice
	f.position = 0
	for i := range f.returns {
		f.returns[i] = 0
	}

	step := timestep.New(timestep.First, 0, f.discount, f.observation(), 0)
	f.lastStep = step

	return step, nil
}

// Step moves the agent to its target position and advances the market
// by one tick
func (f *Finance) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if action.Len() != ActionDims {
		return timestep.TimeStep{}, true, fmt.Errorf("step: actions must "+
			"be %v-dimensional", ActionDims)
	}

	target := floatutils.Clip(action.AtVec(0), MinAction, MaxAction)
	cost := transactionCost * math.Abs(target-f.position)
	f.position = target

	logReturn := f.noise.Rand()
	f.price *= math.Exp(logReturn)
	copy(f.returns, f.returns[1:])
	f.returns[len(f.returns)-1] = logReturn

	reward := f.position*logReturn - cost

	step := timestep.New(timestep.Mid, reward, f.discount, f.observation(),
		f.lastStep.Number+1)
	last := f.ender.End(&step)
	f.lastStep = step

	return step, last, nil
}

// observation returns the current state features of the market
func (f *Finance) observation() mat.Vector {
	obs := make([]float64, 0, ObservationDims)
	obs = append(obs, f.returns...)
	obs = append(obs, f.price/initialPrice, f.position)

	return mat.NewVecDense(ObservationDims, obs)
}

// CurrentTimeStep returns the last timestep of the environment
func (f *Finance) CurrentTimeStep() timestep.TimeStep {
	return f.lastStep
}

// ObservationSpec returns the observation specification of the market
func (f *Finance) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	low := make([]float64, ObservationDims)
	high := make([]float64, ObservationDims)
	for i := 0; i < returnWindow; i++ {
		low[i] = math.Inf(-1)
		high[i] = math.Inf(1)
	}
	low[returnWindow] = 0
	high[returnWindow] = math.Inf(1)
	low[returnWindow+1] = MinAction
	high[returnWindow+1] = MaxAction

	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(ObservationDims, low),
		mat.NewVecDense(ObservationDims, high), environment.Continuous)
}

// ActionSpec returns the action specification of the market
func (f *Finance) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)

	return environment.NewSpec(shape, environment.Action,
		mat.NewVecDense(ActionDims, []float64{MinAction}),
		mat.NewVecDense(ActionDims, []float64{MaxAction}),
		environment.Continuous)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (f *Finance) Close() error {
	return nil
}
