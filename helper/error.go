package helper

import "fmt"

// NewError wraps an error with a short description of the failed operation.
func NewError(operation string, err error) error {
	return fmt.Errorf("error in %v: %w", operation, err)
}
