package datasets

import (
	"fmt"

	"github.com/ssimonc/NeoRL/transition"
)

// Chain is a Loader that tries a sequence of loaders in order, moving
// on to the next one whenever a combination is unavailable. A logged
// dataset on disk can this way take priority over regenerating the
// data from rollouts.
type Chain []Loader

// NewChain returns a Loader that consults loaders in order
func NewChain(loaders ...Loader) Chain {
	return Chain(loaders)
}

// Load returns the buffer from the first loader in the chain that can
// produce it. Errors other than unavailability stop the chain.
func (c Chain) Load(task, level string,
	amount int) (*transition.Batch, error) {
	key := Key(task, level, amount)

	if len(c) == 0 {
		return nil, &DatasetError{Op: "load", Key: key,
			Err: fmt.Errorf("%w: empty loader chain", errUnavailable)}
	}

	var err error
	for _, loader := range c {
		var batch *transition.Batch
		batch, err = loader.Load(task, level, amount)
		if err == nil {
			return batch, nil
		}
		if !IsUnavailable(err) {
			return nil, err
		}
	}

	return nil, err
}
