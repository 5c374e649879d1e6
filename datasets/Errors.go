package datasets

import "errors"

// DatasetError implements errors unique to dataset loading.
type DatasetError struct {
	Op  string
	Key string
	Err error
}

// Error satisfies the error interface
func (e *DatasetError) Error() string {
	return e.Op + " " + e.Key + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause of the DatasetError
func (e *DatasetError) Unwrap() error {
	return e.Err
}

var errUnavailable = errors.New("dataset unavailable")

// IsUnavailable returns whether or not an error reports that the
// requested task, level, and amount combination cannot be loaded.
// Loading failures are fatal to a training run: no partial model is
// ever saved for them.
func IsUnavailable(err error) bool {
	return errors.Is(err, errUnavailable)
}
