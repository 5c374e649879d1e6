package floatutils

import "testing"

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-2, 0, 1, 0},
		{2, 0, 1, 1},
		{1, 1, 1, 1},
	}

	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("Clip(%v, %v, %v) = %v, want %v", test.value,
				test.min, test.max, got, test.want)
		}
	}
}

func TestMinMax(t *testing.T) {
	if got := Min(3, -1, 2); got != -1 {
		t.Errorf("Min = %v, want -1", got)
	}
	if got := Max(3, -1, 2); got != 3 {
		t.Errorf("Max = %v, want 3", got)
	}
}
