package network

import (
	"math"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GlorotU returns a Glorot uniform weight initializer drawing from the
// given RNG, so that weight initialization is reproducible from an
// explicit seed rather than process-wide state.
func GlorotU(gain float64, rng *rand.Rand) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, fanOut := 1, 1
		if len(s) >= 2 {
			fanIn, fanOut = s[0], s[1]
		} else if len(s) == 1 {
			fanIn = s[0]
		}

		limit := gain * math.Sqrt(6.0/float64(fanIn+fanOut))

		size := 1
		for _, dim := range s {
			size *= dim
		}

		data := make([]float64, size)
		for i := range data {
			data[i] = rng.Float64()*2*limit - limit
		}
		return data
	}
}
