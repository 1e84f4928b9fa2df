package platform

import "errors"

// ErrNotSupported is wrapped by errors returned for operations an entity
// cannot perform
var ErrNotSupported = errors.New("operation not supported")

// ErrEntityNotFound is wrapped by lookups of unknown entity ids
var ErrEntityNotFound = errors.New("entity not found")

// ErrCallLoop is wrapped by errors for service calls that reach an entity
// which is already handling the same call
var ErrCallLoop = errors.New("service call loop")

// ServiceError is an error meant to be shown to the user who made the call
type ServiceError struct {
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
