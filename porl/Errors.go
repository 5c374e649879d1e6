package porl

import "errors"

// RegistryError implements errors unique to the environment registry.
type RegistryError struct {
	Op   string
	Task string
	Err  error
}

// Error satisfies the error interface
func (e *RegistryError) Error() string {
	return e.Op + " " + e.Task + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause of the RegistryError
func (e *RegistryError) Unwrap() error {
	return e.Err
}

var errUnknownTask = errors.New("no such task")

var errUnavailable = errors.New("environment dependency not satisfied")

// IsUnknownTask returns whether or not an error reports that a task
// name is not recognized by the registry.
func IsUnknownTask(err error) bool {
	return errors.Is(err, errUnknownTask)
}

// IsUnavailable returns whether or not an error reports that a task
// name is recognized but its environment could not be constructed, for
// example because the simulator it depends on is not installed.
func IsUnavailable(err error) bool {
	return errors.Is(err, errUnavailable)
}
