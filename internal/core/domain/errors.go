package domain

import "errors"

// ErrDependencyUnavailable marks failures of a broker, store or remote
// service that the caller cannot fix by changing its input.
var ErrDependencyUnavailable = errors.New("dependency unavailable")
