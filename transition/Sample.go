package transition

import (
	"golang.org/x/exp/rand"

	"github.com/ssimonc/NeoRL/utils/intutils"
)

// maximum number of rows held out for validation
const maxValSize int = 1000

// ValSize returns the number of rows held out for validation from a
// buffer of n rows: one fifth of the buffer plus one, capped at 1000.
func ValSize(n int) int {
	return intutils.Min(n/5+1, maxValSize)
}

// Split partitions the Batch into disjoint train and validation
// subsets covering the full buffer. Partition indices are drawn without
// replacement from the given RNG. The validation subset has ValSize
// rows; the remainder trains.
func (b *Batch) Split(rng *rand.Rand) (train, val *Batch) {
	perm := rng.Perm(b.Len())
	valSize := ValSize(b.Len())

	return b.Gather(perm[valSize:]), b.Gather(perm[:valSize])
}

// Bootstrap draws a sample of row indices of the same size as the Batch,
// with replacement, from the given RNG. Independent bootstrap draws are
// the source of diversity between ensemble members.
func (b *Batch) Bootstrap(rng *rand.Rand) []int {
	indices := make([]int, b.Len())
	for i := range indices {
		indices[i] = rng.Intn(b.Len())
	}
	return indices
}

// Minibatches partitions indices into contiguous minibatches of size
// batchSize; the final minibatch may be smaller.
func Minibatches(indices []int, batchSize int) [][]int {
	if batchSize <= 0 {
		return [][]int{indices}
	}

	batches := make([][]int, 0, (len(indices)+batchSize-1)/batchSize)
	for start := 0; start < len(indices); start += batchSize {
		end := start + batchSize
		if end > len(indices) {
			end = len(indices)
		}
		batches = append(batches, indices[start:end])
	}
	return batches
}
