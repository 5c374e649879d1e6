package ib

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewRejectsBadParameters(t *testing.T) {
	if _, _, err := New(101, 10, 0.99, 7); err == nil {
		t.Error("expected error for setpoint above the setscrew range")
	}
	if _, _, err := New(70, 0, 0.99, 7); err == nil {
		t.Error("expected error for non-positive episode cutoff")
	}
}

func TestEpisodeEndsAtCutoff(t *testing.T) {
	const cutoff = 3
	env, first, err := New(70, cutoff, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	if !first.First() {
		t.Error("first timestep is not marked First")
	}

	action := mat.NewVecDense(ActionDims, []float64{0.5, -0.5, 0.1})
	for i := 1; i <= cutoff; i++ {
		step, last, err := env.Step(action)
		if err != nil {
			t.Fatal(err)
		}
		if wantLast := i == cutoff; last != wantLast {
			t.Errorf("step %v: last = %v, want %v", i, last, wantLast)
		}
		if step.Number != i {
			t.Errorf("step %v numbered %v", i, step.Number)
		}
	}
}

func TestObservationMatchesSpec(t *testing.T) {
	env, first, err := New(70, 1000, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	spec := env.ObservationSpec()
	if first.Observation.Len() != spec.Shape.Len() {
		t.Fatalf("observation has %v features, spec says %v",
			first.Observation.Len(), spec.Shape.Len())
	}

	// Setscrews start inside their bounds
	for i := 1; i <= 3; i++ {
		pos := first.Observation.AtVec(i)
		if pos < SetscrewMin || pos > SetscrewMax {
			t.Errorf("setscrew %v starts at %v, outside [%v, %v]", i, pos,
				SetscrewMin, SetscrewMax)
		}
	}
}

func TestRewardPenalizesOperatingCost(t *testing.T) {
	env, _, err := New(70, 1000, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	step, _, err := env.Step(mat.NewVecDense(ActionDims, nil))
	if err != nil {
		t.Fatal(err)
	}
	if step.Reward > 0 {
		t.Errorf("got reward %v, want non-positive", step.Reward)
	}
}

func TestResetStartsNewEpisode(t *testing.T) {
	env, _, err := New(70, 2, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	action := mat.NewVecDense(ActionDims, nil)
	env.Step(action)
	if _, last, _ := env.Step(action); !last {
		t.Fatal("episode did not end at cutoff")
	}

	step, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if !step.First() || step.Number != 0 {
		t.Errorf("reset returned step type %v number %v", step.StepType,
			step.Number)
	}
}
