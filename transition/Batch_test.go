package transition

import (
	"bytes"
	"encoding/gob"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ssimonc/NeoRL/timestep"
)

func TestBatchRejectsMismatchedDimensions(t *testing.T) {
	b, err := NewBatch(2, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	badObs := timestep.Transition{
		Obs:     mat.NewVecDense(3, nil),
		Action:  mat.NewVecDense(1, nil),
		NextObs: mat.NewVecDense(2, nil),
	}
	if err := b.Add(badObs); err == nil {
		t.Error("expected error adding transition with 3-dim observation " +
			"to 2-dim batch")
	}

	badAction := timestep.Transition{
		Obs:     mat.NewVecDense(2, nil),
		Action:  mat.NewVecDense(2, nil),
		NextObs: mat.NewVecDense(2, nil),
	}
	if err := b.Add(badAction); err == nil {
		t.Error("expected error adding transition with 2-dim action to " +
			"1-dim batch")
	}

	if b.Len() != 0 {
		t.Errorf("rejected transitions were stored: batch has %v rows",
			b.Len())
	}
}

func TestBatchInputTargetLayout(t *testing.T) {
	b, err := NewBatch(2, 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	transitions := []timestep.Transition{
		{
			Obs:     mat.NewVecDense(2, []float64{1, 2}),
			Action:  mat.NewVecDense(1, []float64{3}),
			NextObs: mat.NewVecDense(2, []float64{4, 5}),
			Reward:  6,
		},
		{
			Obs:     mat.NewVecDense(2, []float64{7, 8}),
			Action:  mat.NewVecDense(1, []float64{9}),
			NextObs: mat.NewVecDense(2, []float64{10, 11}),
			Reward:  12,
		},
	}
	for _, tr := range transitions {
		if err := b.Add(tr); err != nil {
			t.Fatal(err)
		}
	}

	if b.InputDims() != 3 || b.TargetDims() != 3 {
		t.Fatalf("got input dims %v and target dims %v, want 3 and 3",
			b.InputDims(), b.TargetDims())
	}

	// Rows are (obs ‖ act) and (obsNext ‖ rew), requested out of order
	wantInput := []float64{7, 8, 9, 1, 2, 3}
	wantTarget := []float64{10, 11, 12, 4, 5, 6}

	gotInput := b.Input([]int{1, 0})
	gotTarget := b.Target([]int{1, 0})

	for i := range wantInput {
		if gotInput[i] != wantInput[i] {
			t.Errorf("input[%v] = %v, want %v", i, gotInput[i], wantInput[i])
		}
		if gotTarget[i] != wantTarget[i] {
			t.Errorf("target[%v] = %v, want %v", i, gotTarget[i],
				wantTarget[i])
		}
	}
}

func TestBatchGobRoundTrip(t *testing.T) {
	b := testBatch(t, 7)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		t.Fatal(err)
	}

	var decoded Batch
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Len() != b.Len() {
		t.Fatalf("decoded batch has %v rows, want %v", decoded.Len(),
			b.Len())
	}
	if decoded.ObsDims() != b.ObsDims() ||
		decoded.ActionDims() != b.ActionDims() {
		t.Fatalf("decoded batch has dims (%v, %v), want (%v, %v)",
			decoded.ObsDims(), decoded.ActionDims(), b.ObsDims(),
			b.ActionDims())
	}

	indices := make([]int, b.Len())
	for i := range indices {
		indices[i] = i
	}

	wantIn, gotIn := b.Input(indices), decoded.Input(indices)
	wantTarget, gotTarget := b.Target(indices), decoded.Target(indices)
	for i := range wantIn {
		if gotIn[i] != wantIn[i] {
			t.Errorf("decoded input[%v] = %v, want %v", i, gotIn[i],
				wantIn[i])
		}
	}
	for i := range wantTarget {
		if gotTarget[i] != wantTarget[i] {
			t.Errorf("decoded target[%v] = %v, want %v", i, gotTarget[i],
				wantTarget[i])
		}
	}
}
