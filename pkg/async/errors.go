package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the deadline passes
	// before the future completes.
	ErrTimeout = errors.New("async.errors.timeout")
)
