package transition

import (
	"sort"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/ssimonc/NeoRL/timestep"
)

// testBatch returns a Batch of n transitions whose first observation
// feature identifies the row
func testBatch(t *testing.T, n int) *Batch {
	t.Helper()

	b, err := NewBatch(2, 1, n)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < n; i++ {
		row := float64(i)
		err := b.Add(timestep.Transition{
			Obs:     mat.NewVecDense(2, []float64{row, -row}),
			Action:  mat.NewVecDense(1, []float64{row / 10}),
			NextObs: mat.NewVecDense(2, []float64{row + 1, -row - 1}),
			Reward:  row * 2,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return b
}

func TestValSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{4, 1},
		{5, 2},
		{10, 3},
		{100, 21},
		{999, 200},
		{1000, 201},
		{4994, 999},
		{4995, 1000},
		{5000, 1000},
		{10000, 1000},
	}

	for _, test := range tests {
		if got := ValSize(test.n); got != test.want {
			t.Errorf("ValSize(%v) = %v, want %v", test.n, got, test.want)
		}
	}
}

func TestSplitPartitionsBatch(t *testing.T) {
	const n = 100
	b := testBatch(t, n)
	rng := rand.New(rand.NewSource(42))

	train, val := b.Split(rng)

	if val.Len() != ValSize(n) {
		t.Errorf("validation subset has %v rows, want %v", val.Len(),
			ValSize(n))
	}
	if train.Len() != n-ValSize(n) {
		t.Errorf("training subset has %v rows, want %v", train.Len(),
			n-ValSize(n))
	}

	// The two subsets together must cover every row exactly once. The
	// first observation feature identifies rows.
	rows := make([]float64, 0, n)
	for _, sub := range []*Batch{train, val} {
		indices := make([]int, sub.Len())
		for i := range indices {
			indices[i] = i
		}
		in := sub.Input(indices)
		for i := 0; i < sub.Len(); i++ {
			rows = append(rows, in[i*sub.InputDims()])
		}
	}

	sort.Float64s(rows)
	for i, row := range rows {
		if row != float64(i) {
			t.Fatalf("split does not partition the batch: row %v missing", i)
		}
	}
}

func TestBootstrap(t *testing.T) {
	const n = 50
	b := testBatch(t, n)
	rng := rand.New(rand.NewSource(7))

	indices := b.Bootstrap(rng)
	if len(indices) != n {
		t.Errorf("bootstrap drew %v indices, want %v", len(indices), n)
	}
	for _, i := range indices {
		if i < 0 || i >= n {
			t.Errorf("bootstrap index %v out of range [0, %v)", i, n)
		}
	}
}

func TestMinibatches(t *testing.T) {
	indices := make([]int, 10)
	for i := range indices {
		indices[i] = i
	}

	batches := Minibatches(indices, 4)
	if len(batches) != 3 {
		t.Fatalf("got %v minibatches, want 3", len(batches))
	}

	wantSizes := []int{4, 4, 2}
	next := 0
	for i, batch := range batches {
		if len(batch) != wantSizes[i] {
			t.Errorf("minibatch %v has %v rows, want %v", i, len(batch),
				wantSizes[i])
		}
		for _, idx := range batch {
			if idx != next {
				t.Errorf("minibatch %v is not contiguous: got index %v, "+
					"want %v", i, idx, next)
			}
			next++
		}
	}
}
