// Package environment outlines the interfaces and structs needed to
// implement concrete simulation environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ssimonc/NeoRL/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Ender determines when to end episodes. If an episode should end at
// timestep t, End modifies t's StepType field to timestep.Last and
// returns true.
type Ender interface {
	End(t *timestep.TimeStep) bool
}

// Environment implements a simulated environment. Environments start
// ready to use: the constructor returns the first TimeStep alongside
// the environment. Reset begins a new episode. Step takes one action
// and returns the resulting TimeStep and whether the episode ended.
type Environment interface {
	Reset() (timestep.TimeStep, error)
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)
	ObservationSpec() Spec
	ActionSpec() Spec
	CurrentTimeStep() timestep.TimeStep
	Close() error
}
