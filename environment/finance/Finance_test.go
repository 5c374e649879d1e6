package finance

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEpisodeEndsAtCutoff(t *testing.T) {
	const cutoff = 5
	env, first, err := New(cutoff, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	if first.Observation.Len() != ObservationDims {
		t.Fatalf("observation has %v features, want %v",
			first.Observation.Len(), ObservationDims)
	}

	action := mat.NewVecDense(ActionDims, []float64{0.5})
	for i := 1; i <= cutoff; i++ {
		_, last, err := env.Step(action)
		if err != nil {
			t.Fatal(err)
		}
		if wantLast := i == cutoff; last != wantLast {
			t.Errorf("step %v: last = %v, want %v", i, last, wantLast)
		}
	}
}

func TestPositionIsClipped(t *testing.T) {
	env, _, err := New(1000, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	step, _, err := env.Step(mat.NewVecDense(ActionDims, []float64{5}))
	if err != nil {
		t.Fatal(err)
	}

	position := step.Observation.AtVec(ObservationDims - 1)
	if position != MaxAction {
		t.Errorf("got position %v, want clipped to %v", position, MaxAction)
	}
}

func TestPriceStaysPositive(t *testing.T) {
	env, _, err := New(1000, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	action := mat.NewVecDense(ActionDims, []float64{-1})
	for i := 0; i < 200; i++ {
		step, _, err := env.Step(action)
		if err != nil {
			t.Fatal(err)
		}
		price := step.Observation.AtVec(ObservationDims - 2)
		if price <= 0 || math.IsNaN(price) {
			t.Fatalf("step %v: normalized price %v, want positive", i, price)
		}
	}
}

func TestFlatPositionPaysOnlyTransactionCosts(t *testing.T) {
	env, _, err := New(1000, 0.99, 7)
	if err != nil {
		t.Fatal(err)
	}

	// Holding a flat position earns nothing and trades nothing
	step, _, err := env.Step(mat.NewVecDense(ActionDims, []float64{0}))
	if err != nil {
		t.Fatal(err)
	}
	if step.Reward != 0 {
		t.Errorf("got reward %v for a flat position, want 0", step.Reward)
	}
}
