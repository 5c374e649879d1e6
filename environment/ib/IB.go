// Package ib implements an industrial-benchmark style environment: a
// plant with three controllable setscrews (velocity, gain, and shift)
// that must track an operating setpoint while keeping fatigue and power
// consumption low.
//
// State features consist of the setpoint, the three setscrew positions,
// and the current fatigue and consumption readings. Setscrew positions
// are bounded in [0, 100]. Actions are continuous and 3-dimensional,
// giving the change applied to each setscrew; actions are clipped to
// [-1, 1] before being scaled by the per-setscrew step sizes.
//
// The reward on each step is -(3*fatigue + consumption), so lower
// operating cost is better.
package ib

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ssimonc/NeoRL/environment"
	"github.com/ssimonc/NeoRL/timestep"
	"github.com/ssimonc/NeoRL/utils/floatutils"
)

// default physical constants
const (
	SetscrewMin float64 = 0.0
	SetscrewMax float64 = 100.0

	MaxAction float64 = 1.0
	MinAction float64 = -MaxAction

	// Step sizes applied to velocity, gain, and shift per unit action
	velocityStep float64 = 1.0
	gainStep     float64 = 10.0
	shiftStep    float64 = 5.75

	fatigueNoise float64 = 0.05

	// Bounds the setscrews start within
	startMin float64 = 40.0
	startMax float64 = 60.0

	ActionDims      int = 3
	ObservationDims int = 6
)

// IB implements the industrial benchmark plant. IB implements the
// environment.Environment interface.
type IB struct {
	setpoint float64
	starter  environment.Starter
	ender    environment.Ender

	velocity float64
	gain     float64
	shift    float64

	fatigue     float64
	consumption float64

	noise    distuv.Normal
	lastStep timestep.TimeStep
	discount float64
}

// New returns a new industrial benchmark plant operating at the given
// setpoint, along with the first timestep of the environment. Episodes
// are cut off after cutoff steps.
func New(setpoint float64, cutoff int, discount float64,
	seed uint64) (environment.Environment, timestep.TimeStep, error) {
	if setpoint < SetscrewMin || setpoint > SetscrewMax {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: setpoint must be "+
			"in [%v, %v]", SetscrewMin, SetscrewMax)
	}
	if cutoff <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: episode cutoff " +
			"must be positive")
	}

	noise := distuv.Normal{
		Mu:    0.0,
		Sigma: fatigueNoise,
		Src:   rand.NewSource(seed),
	}

	start := r1.Interval{Min: startMin, Max: startMax}
	starter := environment.NewUniformStarter([]r1.Interval{start, start,
		start}, seed)

	env := &IB{
		setpoint: setpoint,
		starter:  starter,
		ender:    environment.NewStepLimit(cutoff),
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

// Reset resets the plant to a sampled operating point near the middle
// of the setscrew range and returns the starting timestep
func (i *IB) Reset() (timestep.TimeStep, error) {
	start := i.starter.Start()
	i.velocity = start.AtVec(0)
	i.gain = start.AtVec(1)
	i.shift = start.AtVec(2)
	i.updateReadings()

	step := timestep.New(timestep.First, 0, i.discount, i.observation(), 0)
	i.lastStep = step

	return step, nil
}

// Step applies an action to the three setscrews and returns the next
// timestep and whether the episode ended
func (i *IB) Step(action *mat.VecDense) (timestep.TimeStep, bool, error) {
	if action.Len() != ActionDims {
		return timestep.TimeStep{}, true, fmt.Errorf("step: actions must "+
			"be %v-dimensional", ActionDims)
	}

	i.velocity = floatutils.Clip(i.velocity+velocityStep*floatutils.Clip(
		action.AtVec(0), MinAction, MaxAction), SetscrewMin, SetscrewMax)
	i.gain = floatutils.Clip(i.gain+gainStep*floatutils.Clip(
		action.AtVec(1), MinAction, MaxAction), SetscrewMin, SetscrewMax)
	i.shift = floatutils.Clip(i.shift+shiftStep*floatutils.Clip(
		action.AtVec(2), MinAction, MaxAction), SetscrewMin, SetscrewMax)

	i.updateReadings()
	reward := -(3.0*i.fatigue + i.consumption)

	step := timestep.New(timestep.Mid, reward, i.discount, i.observation(),
		i.lastStep.Number+1)
	last := i.ender.End(&step)
	i.lastStep = step

	return step, last, nil
}

// updateReadings recomputes the fatigue and consumption readings from
// the current setscrew positions
func (i *IB) updateReadings() {
	misalign := math.Abs(i.velocity-i.setpoint) +
		math.Abs(i.gain-i.setpoint) +
		math.Abs(i.shift-i.setpoint)
	misalign /= 3.0 * (SetscrewMax - SetscrewMin)

	// Fatigue grows with how hard the plant is driven, consumption with
	// how far it operates from the setpoint
	drive := (i.velocity + i.gain) / (2.0 * SetscrewMax)
	i.fatigue = floatutils.Max(0, drive*misalign+i.noise.Rand())
	i.consumption = misalign + 0.1*drive
}

// observation returns the current state features of the plant
func (i *IB) observation() mat.Vector {
	return mat.NewVecDense(ObservationDims, []float64{
		i.setpoint,
		i.velocity,
		i.gain,
		i.shift,
		i.fatigue,
		i.consumption,
	})
}

// CurrentTimeStep returns the last timestep of the environment
func (i *IB) CurrentTimeStep() timestep.TimeStep {
	return i.lastStep
}

// ObservationSpec returns the observation specification of the plant
func (i *IB) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	low := make([]float64, ObservationDims)
	high := []float64{
		SetscrewMax,
		SetscrewMax,
		SetscrewMax,
		SetscrewMax,
		math.Inf(1),
		math.Inf(1),
	}

	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(ObservationDims, low),
		mat.NewVecDense(ObservationDims, high), environment.Continuous)
}

// ActionSpec returns the action specification of the plant
func (i *IB) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)

	low := []float64{MinAction, MinAction, MinAction}
	high := []float64{MaxAction, MaxAction, MaxAction}

	return environment.NewSpec(shape, environment.Action,
		mat.NewVecDense(ActionDims, low), mat.NewVecDense(ActionDims, high),
		environment.Continuous)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (i *IB) Close() error {
	return nil
}
