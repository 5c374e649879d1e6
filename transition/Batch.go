// Package transition implements fixed buffers of labeled environment
// transitions, the unit of data consumed by offline dynamics-model
// training.
package transition

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/ssimonc/NeoRL/timestep"
)

// Batch is an ordered collection of transitions (obs, act, obsNext,
// rew), stored as flat caches with fixed per-field dimensionality.
// Every row in a Batch shares the same observation and action
// dimensionality. Once a Batch has been split into train and
// validation subsets it should be treated as immutable.
type Batch struct {
	obsCache     []float64
	actionCache  []float64
	nextObsCache []float64
	rewardCache  []float64

	obsDims    int
	actionDims int
	rows       int
}

// NewBatch returns an empty Batch holding transitions with the given
// observation and action dimensionality. The capacity parameter sizes
// the underlying caches; the Batch grows beyond it if needed.
func NewBatch(obsDims, actionDims, capacity int) (*Batch, error) {
	if obsDims <= 0 || actionDims <= 0 {
		return nil, fmt.Errorf("newBatch: dimensions must be positive "+
			"\n\tobs(%v) \n\taction(%v)", obsDims, actionDims)
	}
	if capacity < 0 {
		capacity = 0
	}

	return &Batch{
		obsCache:     make([]float64, 0, capacity*obsDims),
		actionCache:  make([]float64, 0, capacity*actionDims),
		nextObsCache: make([]float64, 0, capacity*obsDims),
		rewardCache:  make([]float64, 0, capacity),
		obsDims:      obsDims,
		actionDims:   actionDims,
	}, nil
}

// Add appends one transition to the Batch
func (b *Batch) Add(t timestep.Transition) error {
	if t.Obs.Len() != b.obsDims || t.NextObs.Len() != b.obsDims {
		return fmt.Errorf("add: invalid observation size \n\twant(%v) "+
			"\n\thave(%v, %v)", b.obsDims, t.Obs.Len(), t.NextObs.Len())
	}
	if t.Action.Len() != b.actionDims {
		return fmt.Errorf("add: invalid action size \n\twant(%v) "+
			"\n\thave(%v)", b.actionDims, t.Action.Len())
	}

	for i := 0; i < b.obsDims; i++ {
		b.obsCache = append(b.obsCache, t.Obs.AtVec(i))
		b.nextObsCache = append(b.nextObsCache, t.NextObs.AtVec(i))
	}
	for i := 0; i < b.actionDims; i++ {
		b.actionCache = append(b.actionCache, t.Action.AtVec(i))
	}
	b.rewardCache = append(b.rewardCache, t.Reward)
	b.rows++

	return nil
}

// Len returns the number of transitions in the Batch
func (b *Batch) Len() int {
	return b.rows
}

// ObsDims returns the dimensionality of observations in the Batch
func (b *Batch) ObsDims() int {
	return b.obsDims
}

// ActionDims returns the dimensionality of actions in the Batch
func (b *Batch) ActionDims() int {
	return b.actionDims
}

// InputDims returns the dimensionality of a dynamics-model input row,
// the concatenation of an observation and an action
func (b *Batch) InputDims() int {
	return b.obsDims + b.actionDims
}

// TargetDims returns the dimensionality of a dynamics-model target row,
// the concatenation of the next observation and the reward
func (b *Batch) TargetDims() int {
	return b.obsDims + 1
}

// Input returns the model input rows (obs ‖ act) at the given row
// indices, flattened in row-major order.
func (b *Batch) Input(indices []int) []float64 {
	in := make([]float64, 0, len(indices)*b.InputDims())
	for _, row := range indices {
		in = append(in, b.obsCache[row*b.obsDims:(row+1)*b.obsDims]...)
		in = append(in,
			b.actionCache[row*b.actionDims:(row+1)*b.actionDims]...)
	}
	return in
}

// Target returns the model target rows (obsNext ‖ rew) at the given row
// indices, flattened in row-major order.
func (b *Batch) Target(indices []int) []float64 {
	target := make([]float64, 0, len(indices)*b.TargetDims())
	for _, row := range indices {
		target = append(target,
			b.nextObsCache[row*b.obsDims:(row+1)*b.obsDims]...)
		target = append(target, b.rewardCache[row])
	}
	return target
}

// Gather returns a new Batch containing the rows at the given indices,
// in order. The receiver is not modified.
func (b *Batch) Gather(indices []int) *Batch {
	gathered := &Batch{
		obsCache:     make([]float64, 0, len(indices)*b.obsDims),
		actionCache:  make([]float64, 0, len(indices)*b.actionDims),
		nextObsCache: make([]float64, 0, len(indices)*b.obsDims),
		rewardCache:  make([]float64, 0, len(indices)),
		obsDims:      b.obsDims,
		actionDims:   b.actionDims,
		rows:         len(indices),
	}

	for _, row := range indices {
		gathered.obsCache = append(gathered.obsCache,
			b.obsCache[row*b.obsDims:(row+1)*b.obsDims]...)
		gathered.actionCache = append(gathered.actionCache,
			b.actionCache[row*b.actionDims:(row+1)*b.actionDims]...)
		gathered.nextObsCache = append(gathered.nextObsCache,
			b.nextObsCache[row*b.obsDims:(row+1)*b.obsDims]...)
		gathered.rewardCache = append(gathered.rewardCache,
			b.rewardCache[row])
	}

	return gathered
}

// batchGob mirrors Batch for gob serialization
type batchGob struct {
	Obs        []float64
	Actions    []float64
	NextObs    []float64
	Rewards    []float64
	ObsDims    int
	ActionDims int
	Rows       int
}

// GobEncode implements the gob.GobEncoder interface
func (b *Batch) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	err := enc.Encode(batchGob{
		Obs:        b.obsCache,
		Actions:    b.actionCache,
		NextObs:    b.nextObsCache,
		Rewards:    b.rewardCache,
		ObsDims:    b.obsDims,
		ActionDims: b.actionDims,
		Rows:       b.rows,
	})
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode batch: %v", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (b *Batch) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var decoded batchGob
	if err := dec.Decode(&decoded); err != nil {
		return fmt.Errorf("gobdecode: could not decode batch: %v", err)
	}

	b.obsCache = decoded.Obs
	b.actionCache = decoded.Actions
	b.nextObsCache = decoded.NextObs
	b.rewardCache = decoded.Rewards
	b.obsDims = decoded.ObsDims
	b.actionDims = decoded.ActionDims
	b.rows = decoded.Rows

	return nil
}
