package helper

import "fmt"

// NewError wraps err with the operation that failed. The operation string
// names the step, not the package, so wrapped chains read as a call trace.
func NewError(operation string, err error) error {
	return fmt.Errorf("error in %v: %w", operation, err)
}
