package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// For stability, the standard deviation of the predicted distribution
// is offset from 0.
const stdOffset float64 = 1e-3

// Initial values of the learnable log standard deviation bounds
const (
	maxLogStdInit float64 = 1.0
	minLogStdInit float64 = -5.0
)

// GaussianMLP parameterizes a diagonal Gaussian distribution over its
// output space. A shared trunk of fully connected layers with swish
// activations feeds two linear heads, one predicting the mean and one
// the log standard deviation of each output.
//
// The predicted log standard deviation is kept inside a learnable
// range: a maximum and minimum log-std are model parameters, and the
// raw head output is squashed between them with softplus so that
// gradients keep flowing when predictions saturate. Training penalizes
// the bounds themselves so the admissible variance range cannot grow
// without limit in either direction.
type GaussianMLP struct {
	g           *G.ExprGraph
	layers      []*fcLayer
	meanLayer   *fcLayer
	logStdLayer *fcLayer
	input       *G.Node

	maxLogStd *G.Node
	minLogStd *G.Node

	mean   *G.Node
	logStd *G.Node
	std    *G.Node

	meanVal G.Value
	stdVal  G.Value

	numInputs    int
	numOutputs   int
	hiddenUnits  int
	hiddenLayers int
	batchSize    int

	learnables G.Nodes
	model      []G.ValueGrad
}

// NewGaussianMLP returns a new GaussianMLP with hiddenLayers hidden
// layers of hiddenUnits units each, taking batches of batch input rows
// of features columns and predicting a Gaussian over outputs columns.
// The parameter init determines the weight initialization scheme of
// the trunk and head weights.
func NewGaussianMLP(features, batch, outputs, hiddenUnits,
	hiddenLayers int, init G.InitWFn) (*GaussianMLP, error) {
	if features <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newGaussianMLP: features and outputs must "+
			"be positive \n\tfeatures(%v) \n\toutputs(%v)", features, outputs)
	}
	if batch <= 0 {
		return nil, fmt.Errorf("newGaussianMLP: batch size must be positive")
	}
	if hiddenUnits <= 0 || hiddenLayers <= 0 {
		return nil, fmt.Errorf("newGaussianMLP: trunk must have at least "+
			"one hidden layer and unit \n\tunits(%v) \n\tlayers(%v)",
			hiddenUnits, hiddenLayers)
	}

	g := G.NewGraph()

	layers := make([]*fcLayer, hiddenLayers)
	in := features
	for i := range layers {
		layers[i] = newFCLayer(g, in, hiddenUnits, Swish, init,
			fmt.Sprintf("Hidden%d", i))
		in = hiddenUnits
	}

	meanLayer := newFCLayer(g, in, outputs, Identity, init, "Mean")
	logStdLayer := newFCLayer(g, in, outputs, Identity, init, "LogStd")

	maxLogStd := G.NewMatrix(g, tensor.Float64, G.WithShape(1, outputs),
		G.WithName("MaxLogStd"), G.WithInit(G.ValuesOf(maxLogStdInit)))
	minLogStd := G.NewMatrix(g, tensor.Float64, G.WithShape(1, outputs),
		G.WithName("MinLogStd"), G.WithInit(G.ValuesOf(minLogStdInit)))

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	net := &GaussianMLP{
		g:            g,
		layers:       layers,
		meanLayer:    meanLayer,
		logStdLayer:  logStdLayer,
		input:        input,
		maxLogStd:    maxLogStd,
		minLogStd:    minLogStd,
		numInputs:    features,
		numOutputs:   outputs,
		hiddenUnits:  hiddenUnits,
		hiddenLayers: hiddenLayers,
		batchSize:    batch,
	}

	if err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newGaussianMLP: could not compute forward "+
			"pass: %v", err)
	}

	return net, nil
}

// fwd performs the forward pass of the GaussianMLP on the input node
func (n *GaussianMLP) fwd(input *G.Node) error {
	pred := input
	var err error
	for i, l := range n.layers {
		if pred, err = l.fwd(pred); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}

	mean, err := n.meanLayer.fwd(pred)
	if err != nil {
		return fmt.Errorf("fwd: could not compute mean head: %v", err)
	}

	rawLogStd, err := n.logStdLayer.fwd(pred)
	if err != nil {
		return fmt.Errorf("fwd: could not compute log-std head: %v", err)
	}

	// Squash the raw log-std between the learnable bounds:
	//	logStd = max - softplus(max - raw)
	//	logStd = min + softplus(logStd - min)
	overshoot := G.Must(G.BroadcastSub(n.maxLogStd, rawLogStd,
		[]byte{0}, nil))
	logStd := G.Must(G.BroadcastSub(n.maxLogStd, softplus(overshoot),
		[]byte{0}, nil))

	undershoot := G.Must(G.BroadcastSub(logStd, n.minLogStd,
		nil, []byte{0}))
	logStd = G.Must(G.BroadcastAdd(n.minLogStd, softplus(undershoot),
		[]byte{0}, nil))

	offset := G.NewConstant(stdOffset)
	std := G.Must(G.Exp(logStd))
	std = G.Must(G.Add(offset, std))

	n.mean = mean
	n.logStd = logStd
	n.std = std

	G.Read(n.mean, &n.meanVal)
	G.Read(n.std, &n.stdVal)

	return nil
}

// softplus adds the softplus of x to the computational graph of x
func softplus(x *G.Node) *G.Node {
	one := G.NewConstant(1.0)
	return G.Must(G.Log(G.Must(G.Add(one, G.Must(G.Exp(x))))))
}

// Graph returns the computational graph of the GaussianMLP
func (n *GaussianMLP) Graph() *G.ExprGraph {
	return n.g
}

// BatchSize returns the number of input rows the network consumes per
// forward pass
func (n *GaussianMLP) BatchSize() int {
	return n.batchSize
}

// Features returns the number of features in a single input row
func (n *GaussianMLP) Features() int {
	return n.numInputs
}

// Outputs returns the dimensionality of the predicted distribution
func (n *GaussianMLP) Outputs() int {
	return n.numOutputs
}

// Mean returns the node holding the predicted distribution mean
func (n *GaussianMLP) Mean() *G.Node {
	return n.mean
}

// Std returns the node holding the predicted standard deviation
func (n *GaussianMLP) Std() *G.Node {
	return n.std
}

// MaxLogStd returns the learnable upper log-std bound node
func (n *GaussianMLP) MaxLogStd() *G.Node {
	return n.maxLogStd
}

// MinLogStd returns the learnable lower log-std bound node
func (n *GaussianMLP) MinLogStd() *G.Node {
	return n.minLogStd
}

// MeanVal returns the value of the mean node after the graph has run
func (n *GaussianMLP) MeanVal() []float64 {
	return n.meanVal.Data().([]float64)
}

// StdVal returns the value of the standard deviation node after the
// graph has run
func (n *GaussianMLP) StdVal() []float64 {
	return n.stdVal.Data().([]float64)
}

// SetInput sets the value of the input node before running the forward
// pass
func (n *GaussianMLP) SetInput(input []float64) error {
	if len(input) != n.numInputs*n.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs \n\twant(%v)"+
			"\n\thave(%v)", n.numInputs*n.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(n.input.Shape()...),
	)
	return G.Let(n.input, inputTensor)
}

// Learnables returns the learnable nodes in a GaussianMLP
func (n *GaussianMLP) Learnables() G.Nodes {
	// Lazy instantiation
	if n.learnables == nil {
		n.learnables = n.computeLearnables()
	}
	return n.learnables
}

// computeLearnables computes all the learnables for the network
func (n *GaussianMLP) computeLearnables() G.Nodes {
	learnables := make(G.Nodes, 0, 2*len(n.layers)+6)

	for _, layer := range append(n.layers, n.meanLayer, n.logStdLayer) {
		learnables = append(learnables, layer.weights)
		if layer.bias != nil {
			learnables = append(learnables, layer.bias)
		}
	}
	learnables = append(learnables, n.maxLogStd, n.minLogStd)

	return learnables
}

// Model returns the learnable nodes with their gradients
func (n *GaussianMLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if n.model == nil {
		model := make([]G.ValueGrad, 0, len(n.Learnables()))
		for _, node := range n.Learnables() {
			model = append(model, node)
		}
		n.model = model
	}
	return n.model
}

// CloneWithBatch clones a GaussianMLP with a new input batch size. The
// clone lives on its own computational graph and shares no state with
// the receiver.
func (n *GaussianMLP) CloneWithBatch(batch int) (*GaussianMLP, error) {
	if batch <= 0 {
		return nil, fmt.Errorf("cloneWithBatch: batch size must be positive")
	}

	g := G.NewGraph()

	layers := make([]*fcLayer, len(n.layers))
	for i := range n.layers {
		layers[i] = n.layers[i].cloneTo(g)
	}

	clone := &GaussianMLP{
		g:            g,
		layers:       layers,
		meanLayer:    n.meanLayer.cloneTo(g),
		logStdLayer:  n.logStdLayer.cloneTo(g),
		maxLogStd:    n.maxLogStd.CloneTo(g),
		minLogStd:    n.minLogStd.CloneTo(g),
		numInputs:    n.numInputs,
		numOutputs:   n.numOutputs,
		hiddenUnits:  n.hiddenUnits,
		hiddenLayers: n.hiddenLayers,
		batchSize:    batch,
	}

	clone.input = G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, n.numInputs), G.WithName("input"),
		G.WithInit(G.Zeroes()))

	if err := clone.fwd(clone.input); err != nil {
		return nil, fmt.Errorf("cloneWithBatch: could not clone: %v", err)
	}

	return clone, nil
}

// Set sets the weights of a GaussianMLP to be equal to the weights of
// another GaussianMLP
func (dest *GaussianMLP) Set(source *GaussianMLP) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: networks have different architectures "+
			"\n\twant(%v learnables) \n\thave(%v)", len(nodes),
			len(sourceNodes))
	}

	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a deep copy of the network's learnable tensors, in
// Learnables order
func (n *GaussianMLP) Snapshot() []*tensor.Dense {
	snapshot := make([]*tensor.Dense, len(n.Learnables()))
	for i, learnable := range n.Learnables() {
		snapshot[i] = learnable.Value().(*tensor.Dense).Clone().(*tensor.Dense)
	}
	return snapshot
}

// SetWeights overwrites the network's learnable tensors with the given
// snapshot, which must be in Learnables order
func (n *GaussianMLP) SetWeights(snapshot []*tensor.Dense) error {
	learnables := n.Learnables()
	if len(snapshot) != len(learnables) {
		return fmt.Errorf("setWeights: invalid snapshot length \n\twant(%v)"+
			"\n\thave(%v)", len(learnables), len(snapshot))
	}

	for i, learnable := range learnables {
		value := snapshot[i].Clone().(*tensor.Dense)
		if err := G.Let(learnable, value); err != nil {
			return fmt.Errorf("setWeights: could not set learnable %v: %v",
				i, err)
		}
	}
	return nil
}
