package solver

import (
	"encoding/json"
	"testing"
)

func TestAdamWJSONRoundTrip(t *testing.T) {
	original, err := NewDefaultAdamW(1e-3, 0.000075, 256)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Solver
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Type != AdamW {
		t.Errorf("decoded solver has type %v, want %v", decoded.Type, AdamW)
	}
	if decoded.Solver == nil {
		t.Error("decoded solver was not instantiated")
	}

	config, ok := decoded.Config.(*AdamWConfig)
	if !ok {
		t.Fatalf("decoded config has type %T", decoded.Config)
	}
	if config.StepSize != 1e-3 || config.WeightDecay != 0.000075 ||
		config.Batch != 256 {
		t.Errorf("decoded config lost fields: %+v", config)
	}
}

func TestNewSolverRejectsMismatchedType(t *testing.T) {
	if _, err := newSolver(Adam, VanillaConfig{StepSize: 0.1}); err == nil {
		t.Error("expected error creating an Adam solver from a vanilla " +
			"config")
	}
}
