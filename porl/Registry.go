// Package porl maps task names to constructed simulation environments.
// The registry covers the native industrial benchmark, district energy,
// and trading environments, the MuJoCo locomotion suite, and the fixed
// list of offline benchmark dataset names, which share the MuJoCo
// simulators.
//
// Make never panics across the registry boundary: an unrecognized task
// name yields an error for which IsUnknownTask reports true, and a
// recognized task whose simulator cannot be constructed yields an error
// for which IsUnavailable reports true.
package porl

import (
	"fmt"

	"github.com/ssimonc/NeoRL/environment"
	"github.com/ssimonc/NeoRL/environment/citylearn"
	"github.com/ssimonc/NeoRL/environment/finance"
	"github.com/ssimonc/NeoRL/environment/gym"
	"github.com/ssimonc/NeoRL/environment/ib"
)

// default episode parameters for natively simulated tasks
const (
	episodeCutoff int     = 1000
	discount      float64 = 0.99
)

// family enumerates the task families the registry can construct.
type family int

const (
	industrialBenchmark family = iota
	districtEnergy
	trading
	mujoco
)

// entry is one row of the dispatch table: the family of the task plus
// the parameters needed to construct its environment.
type entry struct {
	family   family
	setpoint float64 // industrialBenchmark only
	gymID    string  // mujoco only
}

// tasks maps every recognized task name to its dispatch entry.
var tasks = map[string]entry{
	"ib":    {family: industrialBenchmark, setpoint: 70},
	"ib50":  {family: industrialBenchmark, setpoint: 50},
	"ib70":  {family: industrialBenchmark, setpoint: 70},
	"ib100": {family: industrialBenchmark, setpoint: 100},

	"citylearn": {family: districtEnergy},
	"finance":   {family: trading},

	"HalfCheetah-v3": {family: mujoco, gymID: "HalfCheetah-v3"},
	"Walker2d-v3":    {family: mujoco, gymID: "Walker2d-v3"},
	"Hopper-v3":      {family: mujoco, gymID: "Hopper-v3"},

	// Offline benchmark dataset names share their simulators with the
	// MuJoCo suite
	"halfcheetah-medium-v0": {family: mujoco, gymID: "HalfCheetah-v3"},
	"hopper-medium-v0":      {family: mujoco, gymID: "Hopper-v3"},
	"walker2d-medium-v0":    {family: mujoco, gymID: "Walker2d-v3"},
}

// Make constructs the environment registered under the task name. The
// returned environment is ready to step.
func Make(task string, seed uint64) (environment.Environment, error) {
	e, ok := tasks[task]
	if !ok {
		return nil, &RegistryError{Op: "make", Task: task,
			Err: errUnknownTask}
	}

	var env environment.Environment
	var err error

	switch e.family {
	case industrialBenchmark:
		env, _, err = ib.New(e.setpoint, episodeCutoff, discount, seed)

	case districtEnergy:
		env, _, err = citylearn.New(episodeCutoff, discount, seed)

	case trading:
		env, _, err = finance.New(episodeCutoff, discount, seed)

	case mujoco:
		env, _, err = gym.New(e.gymID, discount, seed)
	}

	if err != nil {
		return nil, &RegistryError{Op: "make", Task: task,
			Err: fmt.Errorf("%w: %v", errUnavailable, err)}
	}

	return env, nil
}

// Tasks returns the names of every task the registry recognizes.
func Tasks() []string {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	return names
}
