package dynamics

import "testing"

func TestSelectBestIndexes(t *testing.T) {
	metrics := []float64{0.5, 0.1, 0.9, 0.3}

	got := selectBestIndexes(metrics, 2)
	want := []int{1, 3}

	if len(got) != len(want) {
		t.Fatalf("selected %v members, want %v", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selected[%v] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSelectBestIndexesBreaksTiesByIndex(t *testing.T) {
	metrics := []float64{0.2, 0.1, 0.2, 0.1}

	got := selectBestIndexes(metrics, 3)
	want := []int{1, 3, 0}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selected[%v] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSelectBestIndexesFullEnsemble(t *testing.T) {
	metrics := []float64{3, 1, 2}

	got := selectBestIndexes(metrics, 3)
	want := []int{1, 2, 0}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selected[%v] = %v, want %v", i, got[i], want[i])
		}
	}
}
