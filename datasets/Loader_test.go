package datasets

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ssimonc/NeoRL/timestep"
	"github.com/ssimonc/NeoRL/transition"
)

// savedBatch returns a small batch of identifiable transitions
func savedBatch(t *testing.T, n int) *transition.Batch {
	t.Helper()

	b, err := transition.NewBatch(2, 1, n)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		row := float64(i)
		err := b.Add(timestep.Transition{
			Obs:     mat.NewVecDense(2, []float64{row, row}),
			Action:  mat.NewVecDense(1, []float64{-row}),
			NextObs: mat.NewVecDense(2, []float64{row + 1, row + 1}),
			Reward:  row,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return b
}

func TestFileLoaderRoundTrip(t *testing.T) {
	loader := NewFileLoader(t.TempDir())

	const n = 5
	saved := savedBatch(t, n)
	if err := loader.Save("ib", Low, n, saved); err != nil {
		t.Fatal(err)
	}

	loaded, err := loader.Load("ib", Low, n)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != n {
		t.Fatalf("loaded %v transitions, want %v", loaded.Len(), n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	want, got := saved.Input(indices), loaded.Input(indices)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("loaded input[%v] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFileLoaderMissingDataset(t *testing.T) {
	loader := NewFileLoader(t.TempDir())

	_, err := loader.Load("ib", Low, 100)
	if err == nil {
		t.Fatal("expected an error for a missing dataset")
	}
	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = false, want true", err)
	}
}

func TestFileLoaderAmountMismatch(t *testing.T) {
	loader := NewFileLoader(t.TempDir())

	// A file claiming 10 transitions but holding 5 must not load
	if err := loader.Save("ib", Low, 10, savedBatch(t, 5)); err != nil {
		t.Fatal(err)
	}

	_, err := loader.Load("ib", Low, 10)
	if err == nil {
		t.Fatal("expected an error for a dataset of the wrong size")
	}
	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = false, want true", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("finance", High, 1000); got != "finance-high-1000" {
		t.Errorf("Key = %q, want %q", got, "finance-high-1000")
	}
}

func TestRolloutLoader(t *testing.T) {
	loader := NewRolloutLoader(7)

	const amount = 50
	batch, err := loader.Load("finance", Low, amount)
	if err != nil {
		t.Fatal(err)
	}

	if batch.Len() != amount {
		t.Errorf("rolled out %v transitions, want %v", batch.Len(), amount)
	}
	if batch.ObsDims() != 6 || batch.ActionDims() != 1 {
		t.Errorf("got dims (%v, %v), want (6, 1)", batch.ObsDims(),
			batch.ActionDims())
	}
}

func TestRolloutLoaderUnknownTask(t *testing.T) {
	loader := NewRolloutLoader(7)

	_, err := loader.Load("no-such-task", Low, 10)
	if err == nil {
		t.Fatal("expected an error for an unregistered task")
	}
	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = false, want true", err)
	}
}

func TestRolloutLoaderUnknownLevel(t *testing.T) {
	loader := NewRolloutLoader(7)

	_, err := loader.Load("ib", "extreme", 10)
	if err == nil {
		t.Fatal("expected an error for an unregistered difficulty level")
	}
	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = false, want true", err)
	}
}

func TestChainFallsBack(t *testing.T) {
	// An empty dataset directory cannot serve anything; the chain must
	// fall through to rollouts
	chain := NewChain(NewFileLoader(t.TempDir()), NewRolloutLoader(7))

	batch, err := chain.Load("citylearn", Medium, 20)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Len() != 20 {
		t.Errorf("chain produced %v transitions, want 20", batch.Len())
	}
}

func TestChainExhausted(t *testing.T) {
	chain := NewChain(NewFileLoader(t.TempDir()))

	_, err := chain.Load("ib", Low, 10)
	if err == nil {
		t.Fatal("expected an error when no loader can produce the dataset")
	}
	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable(%v) = false, want true", err)
	}
}
