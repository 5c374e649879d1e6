package porl

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMakeUnknownTask(t *testing.T) {
	env, err := Make("no-such-task", 7)
	if env != nil {
		t.Error("got an environment for an unregistered task name")
	}
	if err == nil {
		t.Fatal("expected an error for an unregistered task name")
	}
	if !IsUnknownTask(err) {
		t.Errorf("IsUnknownTask(%v) = false, want true", err)
	}
	if IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = true, want false", err)
	}
}

func TestMakeNativeTasks(t *testing.T) {
	for _, task := range []string{"ib", "ib50", "ib70", "ib100",
		"citylearn", "finance"} {
		env, err := Make(task, 7)
		if err != nil {
			t.Errorf("could not construct %v: %v", task, err)
			continue
		}

		obsSpec := env.ObservationSpec()
		actionSpec := env.ActionSpec()
		if obsSpec.Shape.Len() <= 0 || actionSpec.Shape.Len() <= 0 {
			t.Errorf("%v: degenerate specs: obs %v, action %v", task,
				obsSpec.Shape.Len(), actionSpec.Shape.Len())
		}

		first := env.CurrentTimeStep()
		if !first.First() {
			t.Errorf("%v: constructed environment is mid-episode", task)
		}
		if first.Observation.Len() != obsSpec.Shape.Len() {
			t.Errorf("%v: observation has %v features, spec says %v", task,
				first.Observation.Len(), obsSpec.Shape.Len())
		}

		action := mat.NewVecDense(actionSpec.Shape.Len(), nil)
		step, last, err := env.Step(action)
		if err != nil {
			t.Errorf("%v: could not step: %v", task, err)
		}
		if last {
			t.Errorf("%v: episode ended on the first step", task)
		}
		if step.Observation.Len() != obsSpec.Shape.Len() {
			t.Errorf("%v: stepped observation has %v features, spec says "+
				"%v", task, step.Observation.Len(), obsSpec.Shape.Len())
		}

		if err := env.Close(); err != nil {
			t.Errorf("%v: could not close: %v", task, err)
		}
	}
}

// The MuJoCo suite needs the simulator installed; an unprovisioned
// machine must see an unavailability error, never an unknown-task error
// and never a panic.
func TestMakeMuJoCoTasks(t *testing.T) {
	for _, task := range []string{"HalfCheetah-v3", "Walker2d-v3",
		"Hopper-v3", "halfcheetah-medium-v0", "hopper-medium-v0",
		"walker2d-medium-v0"} {
		env, err := Make(task, 7)
		if err != nil {
			if IsUnknownTask(err) {
				t.Errorf("%v reported as unknown", task)
			}
			if !IsUnavailable(err) {
				t.Errorf("IsUnavailable(%v) = false, want true", err)
			}
			continue
		}
		env.Close()
	}
}

func TestTasksListsEveryTask(t *testing.T) {
	names := Tasks()
	if len(names) != len(tasks) {
		t.Fatalf("Tasks returned %v names, want %v", len(names), len(tasks))
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := tasks[name]; !ok {
			t.Errorf("Tasks returned unregistered name %q", name)
		}
		if seen[name] {
			t.Errorf("Tasks returned %q twice", name)
		}
		seen[name] = true
	}
}
