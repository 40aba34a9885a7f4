package plagiarism

import "errors"

var (
	// ErrInvalidOptions is returned when Options fail validation.
	ErrInvalidOptions = errors.New("invalid analysis options")
	// ErrResourceExhausted is returned when a comparison would exceed the
	// configured resource bounds.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrComputationFailed is returned when a pair evaluation fails internally.
	ErrComputationFailed = errors.New("computation failed")
	// ErrPoolClosed is returned when work is submitted to a closed worker pool.
	ErrPoolClosed = errors.New("worker pool closed")
)
