package timestep

import "gonum.org/v1/gonum/mat"

// Transition is a single labeled environment transition: the observation
// and action taken, the observation that followed, and the reward
// received. Transitions are the unit of data that offline dynamics-model
// training consumes.
type Transition struct {
	Obs     mat.Vector
	Action  mat.Vector
	NextObs mat.Vector
	Reward  float64
}

// NewTransition packages the relevant parts of two sequential timesteps
// and the action between them into a Transition.
func NewTransition(step TimeStep, action mat.Vector,
	nextStep TimeStep) Transition {
	return Transition{
		Obs:     step.Observation,
		Action:  action,
		NextObs: nextStep.Observation,
		Reward:  nextStep.Reward,
	}
}
