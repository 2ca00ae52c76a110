package report

import "errors"

// ErrInvalidInput marks caller mistakes such as a missing task list id.
var ErrInvalidInput = errors.New("invalid input")
