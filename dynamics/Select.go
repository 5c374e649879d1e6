package dynamics

import "sort"

// selectBestIndexes returns the indices of the n lowest metrics, in
// ascending order of metric. The sort is stable, so ties are broken by
// original index order.
func selectBestIndexes(metrics []float64, n int) []int {
	indexes := make([]int, len(metrics))
	for i := range indexes {
		indexes[i] = i
	}

	sort.SliceStable(indexes, func(a, b int) bool {
		return metrics[indexes[a]] < metrics[indexes[b]]
	})

	return indexes[:n]
}
