// Package model implements the ensemble of probabilistic dynamics
// models fit by offline pretraining. Each ensemble member maps an
// (observation, action) input row to a Gaussian distribution over the
// (next observation, reward) target row.
package model

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/ssimonc/NeoRL/network"
	"github.com/ssimonc/NeoRL/solver"
	"github.com/ssimonc/NeoRL/utils/op"
)

// coefficient of the log-std bound regularization term
const logStdBoundPenalty float64 = 0.01

// member is one independently initialized ensemble member. The train
// network carries the loss graph and is updated in place; the eval
// network is a fixed-shape clone used for validation forward passes.
// The saved slot holds the member's best parameter snapshot, written
// only when the member's validation loss strictly improves.
type member struct {
	train *network.GaussianMLP
	eval  *network.GaussianMLP

	trainVM G.VM
	evalVM  G.VM
	solver  *solver.Solver

	target *G.Node

	saved []*tensor.Dense
}

// EnsembleTransition is an ensemble of probabilistic dynamics models.
// Members are trained independently on their own bootstrap samples and
// share no mutable state except their own checkpoints. After training,
// SetSelect restricts the ensemble to its best-performing subset,
// which becomes the active inference set.
type EnsembleTransition struct {
	members []*member

	obsDims     int
	actionDims  int
	hiddenUnits int
	nbLayers    int
	batchSize   int
	valSize     int

	learningRate float64
	weightDecay  float64

	selected []int
}

// New returns a new EnsembleTransition of ensembleSize independently
// initialized members. Training consumes minibatches of batchSize
// input rows; validation evaluates valSize rows at a time. Member
// weights are drawn from rng so that initialization is reproducible.
func New(obsDims, actionDims, hiddenUnits, nbLayers, ensembleSize,
	batchSize, valSize int, learningRate, weightDecay float64,
	rng *rand.Rand) (*EnsembleTransition, error) {
	if ensembleSize <= 0 {
		return nil, fmt.Errorf("new: ensemble size must be positive")
	}
	if valSize <= 0 {
		return nil, fmt.Errorf("new: validation size must be positive")
	}

	e := &EnsembleTransition{
		members:      make([]*member, ensembleSize),
		obsDims:      obsDims,
		actionDims:   actionDims,
		hiddenUnits:  hiddenUnits,
		nbLayers:     nbLayers,
		batchSize:    batchSize,
		valSize:      valSize,
		learningRate: learningRate,
		weightDecay:  weightDecay,
	}

	for i := range e.members {
		m, err := e.newMember(rng)
		if err != nil {
			return nil, fmt.Errorf("new: could not create member %v: %v",
				i, err)
		}
		e.members[i] = m
	}

	return e, nil
}

// newMember creates one ensemble member: its training network with the
// negative log-likelihood loss graph, its solver, and its fixed-shape
// evaluation clone.
func (e *EnsembleTransition) newMember(rng *rand.Rand) (*member, error) {
	features := e.obsDims + e.actionDims
	outputs := e.obsDims + 1

	train, err := network.NewGaussianMLP(features, e.batchSize, outputs,
		e.hiddenUnits, e.nbLayers, network.GlorotU(1.0, rng))
	if err != nil {
		return nil, err
	}

	g := train.Graph()
	target := G.NewMatrix(g, tensor.Float64,
		G.WithShape(e.batchSize, outputs), G.WithName("target"),
		G.WithInit(G.Zeroes()))

	// loss = -mean log N(target; mean, std)
	//	+ 0.01*mean(maxLogStd) - 0.01*mean(minLogStd)
	logProb := op.GaussianLogPdf(train.Mean(), train.Std(), target)
	nll := G.Must(G.Neg(G.Must(G.Mean(logProb))))

	penalty := G.NewConstant(logStdBoundPenalty)
	upper := G.Must(G.Mul(penalty, G.Must(G.Mean(train.MaxLogStd()))))
	lower := G.Must(G.Mul(penalty, G.Must(G.Mean(train.MinLogStd()))))
	cost := G.Must(G.Add(nll, G.Must(G.Sub(upper, lower))))

	if _, err := G.Grad(cost, train.Learnables()...); err != nil {
		return nil, fmt.Errorf("could not compute gradient: %v", err)
	}

	trainVM := G.NewTapeMachine(g, G.BindDualValues(train.Learnables()...))

	adamW, err := solver.NewDefaultAdamW(e.learningRate, e.weightDecay,
		e.batchSize)
	if err != nil {
		return nil, err
	}

	eval, err := train.CloneWithBatch(e.valSize)
	if err != nil {
		return nil, err
	}
	evalVM := G.NewTapeMachine(eval.Graph())

	return &member{
		train:   train,
		eval:    eval,
		trainVM: trainVM,
		evalVM:  evalVM,
		solver:  adamW,
		target:  target,
	}, nil
}

// Size returns the number of members in the ensemble
func (e *EnsembleTransition) Size() int {
	return len(e.members)
}

// ObsDims returns the observation dimensionality the ensemble models
func (e *EnsembleTransition) ObsDims() int {
	return e.obsDims
}

// ActionDims returns the action dimensionality the ensemble models
func (e *EnsembleTransition) ActionDims() int {
	return e.actionDims
}

// TrainStep performs one gradient-descent update of member i on a
// minibatch. The input parameter holds batch-size rows of (obs ‖ act)
// and target holds the corresponding rows of (obsNext ‖ rew).
func (e *EnsembleTransition) TrainStep(i int, input, target []float64) error {
	if i < 0 || i >= len(e.members) {
		return fmt.Errorf("trainStep: no such member %v", i)
	}
	m := e.members[i]

	outputs := e.obsDims + 1
	if len(target) != e.batchSize*outputs {
		return fmt.Errorf("trainStep: invalid number of targets "+
			"\n\twant(%v) \n\thave(%v)", e.batchSize*outputs, len(target))
	}

	if err := m.train.SetInput(input); err != nil {
		return fmt.Errorf("trainStep: could not set input: %v", err)
	}

	targetTensor := tensor.New(
		tensor.WithBacking(target),
		tensor.WithShape(e.batchSize, outputs),
	)
	if err := G.Let(m.target, targetTensor); err != nil {
		return fmt.Errorf("trainStep: could not set target: %v", err)
	}

	if err := m.trainVM.RunAll(); err != nil {
		return fmt.Errorf("trainStep: could not run training graph: %v", err)
	}
	if err := m.solver.Step(m.train.Model()); err != nil {
		return fmt.Errorf("trainStep: could not apply update: %v", err)
	}
	m.trainVM.Reset()

	return nil
}

// Evaluate computes each member's mean squared error between its
// predicted distribution mean and the true targets on the held-out
// validation rows, producing one scalar per member. No gradient
// updates are performed.
func (e *EnsembleTransition) Evaluate(input, target []float64) ([]float64,
	error) {
	losses := make([]float64, len(e.members))
	for i := range e.members {
		loss, err := e.evaluateMember(i, input, target)
		if err != nil {
			return nil, fmt.Errorf("evaluate: member %v: %v", i, err)
		}
		losses[i] = loss
	}
	return losses, nil
}

// EvaluateSelected computes the validation mean squared error of each
// member of the selected subset, in selection order.
func (e *EnsembleTransition) EvaluateSelected(input,
	target []float64) ([]float64, error) {
	if e.selected == nil {
		return nil, fmt.Errorf("evaluateSelected: no subset selected")
	}

	losses := make([]float64, 0, len(e.selected))
	for _, i := range e.selected {
		loss, err := e.evaluateMember(i, input, target)
		if err != nil {
			return nil, fmt.Errorf("evaluateSelected: member %v: %v", i, err)
		}
		losses = append(losses, loss)
	}
	return losses, nil
}

// evaluateMember runs one member's evaluation network forward on the
// validation rows and returns the mean squared error of its mean
// prediction.
func (e *EnsembleTransition) evaluateMember(i int, input,
	target []float64) (float64, error) {
	m := e.members[i]

	outputs := e.obsDims + 1
	if len(target) != e.valSize*outputs {
		return 0, fmt.Errorf("invalid number of targets \n\twant(%v) "+
			"\n\thave(%v)", e.valSize*outputs, len(target))
	}

	// Evaluation always runs against the member's current training
	// parameters
	if err := m.eval.Set(m.train); err != nil {
		return 0, fmt.Errorf("could not copy weights: %v", err)
	}

	if err := m.eval.SetInput(input); err != nil {
		return 0, fmt.Errorf("could not set input: %v", err)
	}
	if err := m.evalVM.RunAll(); err != nil {
		return 0, fmt.Errorf("could not run evaluation graph: %v", err)
	}
	defer m.evalVM.Reset()

	pred := m.eval.MeanVal()
	var sum float64
	for j := range pred {
		diff := pred[j] - target[j]
		sum += diff * diff
	}

	return sum / float64(len(pred)), nil
}

// UpdateSave checkpoints the current parameters of the members at the
// given indexes, overwriting each member's best snapshot. It is called
// exactly for the members whose validation loss strictly improved.
func (e *EnsembleTransition) UpdateSave(indexes []int) {
	for _, i := range indexes {
		e.members[i].saved = e.members[i].train.Snapshot()
	}
}

// SetSelect restricts the ensemble to the members at the given indexes
// and rolls every checkpointed member back to its best snapshot, so
// that later evaluation and persistence see the checkpointed
// parameters rather than the parameters of the final epoch.
func (e *EnsembleTransition) SetSelect(indexes []int) error {
	for _, i := range indexes {
		if i < 0 || i >= len(e.members) {
			return fmt.Errorf("setSelect: no such member %v", i)
		}
	}

	for _, m := range e.members {
		if m.saved == nil {
			continue
		}
		if err := m.train.SetWeights(m.saved); err != nil {
			return fmt.Errorf("setSelect: could not restore snapshot: %v",
				err)
		}
	}

	e.selected = append([]int(nil), indexes...)
	return nil
}

// SelectedIndexes returns the indices of the active inference subset,
// or nil if no subset has been selected yet.
func (e *EnsembleTransition) SelectedIndexes() []int {
	if e.selected == nil {
		return nil
	}
	return append([]int(nil), e.selected...)
}
