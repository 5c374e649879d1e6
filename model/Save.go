package model

import (
	"encoding/gob"
	"fmt"
	"os"

	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// artifact mirrors EnsembleTransition for gob serialization. It holds
// the full ensemble, including the checkpointed parameters of members
// outside the selected subset, so that a run can be reproduced from its
// artifact alone.
type artifact struct {
	ObsDims      int
	ActionDims   int
	HiddenUnits  int
	NbLayers     int
	BatchSize    int
	ValSize      int
	LearningRate float64
	WeightDecay  float64

	Selected []int
	Weights  [][]*tensor.Dense
}

// Save persists the ensemble to path as a single gob-encoded object.
// The artifact is written once, at the end of training, and is
// immutable thereafter.
func (e *EnsembleTransition) Save(path string) error {
	weights := make([][]*tensor.Dense, len(e.members))
	for i, m := range e.members {
		if m.saved != nil {
			weights[i] = m.saved
		} else {
			weights[i] = m.train.Snapshot()
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: could not create artifact file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	err = enc.Encode(artifact{
		ObsDims:      e.obsDims,
		ActionDims:   e.actionDims,
		HiddenUnits:  e.hiddenUnits,
		NbLayers:     e.nbLayers,
		BatchSize:    e.batchSize,
		ValSize:      e.valSize,
		LearningRate: e.learningRate,
		WeightDecay:  e.weightDecay,
		Selected:     e.selected,
		Weights:      weights,
	})
	if err != nil {
		return fmt.Errorf("save: could not encode ensemble: %v", err)
	}

	return nil
}

// Load reads an ensemble artifact written by Save and reconstructs the
// ensemble with its checkpointed parameters and selected subset.
func Load(path string) (*EnsembleTransition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: could not open artifact file: %v", err)
	}
	defer file.Close()

	var a artifact
	if err := gob.NewDecoder(file).Decode(&a); err != nil {
		return nil, fmt.Errorf("load: could not decode ensemble: %v", err)
	}

	// Freshly initialized weights are immediately overwritten by the
	// artifact's snapshots, so the RNG seed here is irrelevant
	e, err := New(a.ObsDims, a.ActionDims, a.HiddenUnits, a.NbLayers,
		len(a.Weights), a.BatchSize, a.ValSize, a.LearningRate,
		a.WeightDecay, rand.New(rand.NewSource(0)))
	if err != nil {
		return nil, fmt.Errorf("load: could not rebuild ensemble: %v", err)
	}

	for i, m := range e.members {
		if err := m.train.SetWeights(a.Weights[i]); err != nil {
			return nil, fmt.Errorf("load: could not restore member %v: %v",
				i, err)
		}
		m.saved = a.Weights[i]
	}
	e.selected = a.Selected

	return e, nil
}
