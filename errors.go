package asicman

import (
	"fmt"

	"github.com/ferrous-networks/asicman/sdk"
)

// HardwareCallError is returned when a vendor call completes with a
// non-success status (other than the single overflow-on-first-attempt
// retry the engine absorbs for list reads). It carries the object
// category and a description of the failed operation.
type HardwareCallError struct {
	Category sdk.ObjectCategory
	Op       string
	Status   sdk.Status
}

func (e HardwareCallError) Error() string {
	return fmt.Sprintf("%s: %s: vendor status %v", e.Category, e.Op, e.Status)
}

// ConfigurationError is returned when an unsupported feature or
// stream-type/queue combination is requested from a capability
// profile. It is fatal at the point of use and never retried.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return e.Reason
}

// NewConfigurationError builds a ConfigurationError from a format
// string.
func NewConfigurationError(format string, args ...any) ConfigurationError {
	return ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ErrObjectNotOwned is returned when a manager is asked to operate on
// a key it did not create.
type ErrObjectNotOwned struct {
	Category sdk.ObjectCategory
	Key      string
}

func (e ErrObjectNotOwned) Error() string {
	return fmt.Sprintf("%s %s is not owned by this manager", e.Category, e.Key)
}
