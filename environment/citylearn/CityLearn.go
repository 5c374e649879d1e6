// Package citylearn implements a building-energy coordination
// environment in the style of the CityLearn benchmark. A small district
// of buildings each has a thermal storage unit; an agent charges or
// discharges each unit to flatten the district's electricity demand
// under a time-of-use price curve.
//
// State features consist of the encoded hour of day, the district's
// base demand, the current electricity price, and the state of charge
// of each storage unit. Actions are continuous, one per building,
// giving the charge (positive) or discharge (negative) rate in [-1, 1].
//
// The reward on each step is the negative electricity cost of the
// district after storage dispatch.
package citylearn

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

// default physical constants
const (
	NumBuildings int = 2

	MaxAction float64 = 1.0
	MinAction float64 = -MaxAction

	chargeRate     float64 = 0.25 // Fraction of capacity per step
	demandNoise    float64 = 0.1
	hoursPerDay    int     = 24
	peakPrice      float64 = 0.5
	offPeakPrice   float64 = 0.2
	peakHourStart  int     = 16
	peakHourEnd    int     = 21
	baseDemandAmp  float64 = 2.0
	baseDemandMean float64 = 3.0

	ActionDims      int = NumBuildings
	ObservationDims int = 4 + NumBuildings
)

// CityLearn implements the district energy environment. CityLearn
// implements the environment.Environment interface.
type CityLearn struct {
	ender  environment.Ender
	hour   int
	charge []float64

	noise    distuv.Normal
	lastStep timestep.TimeStep
	discount float64
}

// New returns a new district energy environment along with the first
// timestep. Episodes are cut off after cutoff steps, each step being
// one hour.
func New(cutoff int, discount float64, seed uint64) (environment.Environment,
	timestep.TimeStep, error) {
	if cutoff <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: episode cutoff " +
			"must be positive")
	}

	noise := distuv.Normal{
		Mu:    0.0,
		Sigma: demandNoise,
		Src:   rand.NewSource(seed),
	}

	env := &CityLearn{
		ender:    environment.NewStepLimit(cutoff),
		charge:   make([]float64, NumBuildings),
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

// Reset resets the district to midnight with half-charged storage
func (c *CityLearn) Reset() (timestep.TimeStep, error) {
	c.hour = 0
	for i := range c.charge {
		c.charge[i] = 0.5
	}

	step := timestep.New(timestep.First, 0, c.discount, c.observation(), 0)
	c.lastStep = step

	return step, nil
}

// Step dispatches the storage units and advances one hour
func (c *CityLearn) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if action.Len() != ActionDims {
		return timestep.TimeStep{}, true, fmt.Errorf("step: actions must "+
			"be %v-dimensional", ActionDims)
	}

	demand := c.baseDemand() + c.noise.Rand()
	for i := 0; i < NumBuildings; i++ {
		a := floatutils.Clip(action.AtVec(i), MinAction, MaxAction)

		// Charging draws from the grid, discharging offsets demand.
		// Storage cannot discharge below empty or charge above full.
		dispatch := a * chargeRate
		next := floatutils.Clip(c.charge[i]+dispatch, 0, 1)
		dispatch = next - c.charge[i]
		c.charge[i] = next

		demand += dispatch / chargeRate
	}
	demand = floatutils.Max(demand, 0)

	reward := -demand * c.price()
	c.hour = (c.hour + 1) % hoursPerDay

	step := timestep.New(timestep.Mid, reward, c.discount, c.observation(),
		c.lastStep.Number+1)
	last := c.ender.End(&step)
	c.lastStep = step

	return step, last, nil
}

// baseDemand returns the district's demand before storage dispatch
func (c *CityLearn) baseDemand() float64 {
	phase := 2.0 * math.Pi * float64(c.hour) / float64(hoursPerDay)
	return baseDemandMean - baseDemandAmp*math.Cos(phase)
}

// price returns the current time-of-use electricity price
func (c *CityLearn) price() float64 {
	if c.hour >= peakHourStart && c.hour <= peakHourEnd {
		return peakPrice
	}
	return offPeakPrice
}

// observation returns the current state features of the district
func (c *CityLearn) observation() mat.Vector {
	phase := 2.0 * math.Pi * float64(c.hour) / float64(hoursPerDay)

	obs := make([]float64, 0, ObservationDims)
	obs = append(obs, math.Sin(phase), math.Cos(phase), c.baseDemand(),
		c.price())
	obs = append(obs, c.charge...)

	return mat.NewVecDense(ObservationDims, obs)
}

// CurrentTimeStep returns the last timestep of the environment
func (c *CityLearn) CurrentTimeStep() timestep.TimeStep {
	return c.lastStep
}

// ObservationSpec returns the observation specification of the district
func (c *CityLearn) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	low := make([]float64, ObservationDims)
	high := make([]float64, ObservationDims)
	low[0], low[1] = -1, -1
	high[0], high[1] = 1, 1
	high[2] = math.Inf(1)
	high[3] = peakPrice
	for i := 4; i < ObservationDims; i++ {
		high[i] = 1
	}

	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(ObservationDims, low),
		mat.NewVecDense(ObservationDims, high), environment.Continuous)
}

// ActionSpec returns the action specification of the district
func (c *CityLearn) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)

	low := make([]float64, ActionDims)
	high := make([]float64, ActionDims)
	for i := range low {
		low[i] = MinAction
		high[i] = MaxAction
	}

	return environment.NewSpec(shape, environment.Action,
		mat.NewVecDense(ActionDims, low), mat.NewVecDense(ActionDims, high),
		environment.Continuous)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (c *CityLearn) Close() error {
	return nil
}
