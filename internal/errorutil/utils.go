package errorutil

import "errors"

// IsValidationErr returns true if the error reports malformed or out-of-range input.
func IsValidationErr(err error) bool {
	var e interface{ Validation() bool }
	return errors.As(err, &e) && e.Validation()
}
