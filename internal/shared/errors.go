package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Batch errors
	ErrNoWorkItems   = fmt.Errorf("no audio/transcript pairs could be matched")
	ErrRunInProgress = fmt.Errorf("batch run already in progress")
	ErrRunNotFound   = fmt.Errorf("run not found")

	// Remote service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
