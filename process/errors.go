package process

import (
	"emperror.dev/errors"
)

const (
	ErrSpawn          = errors.Sentinel("failed to spawn server")
	ErrNotFound       = errors.Sentinel("server not found")
	ErrIO             = errors.Sentinel("server io failure")
	ErrAlreadyRunning = errors.Sentinel("server already running")
	ErrInvalidConfig  = errors.Sentinel("invalid server config")
	ErrClosed         = errors.Sentinel("supervisor closed")
)

// kindError tags a cause with one of the sentinels above, so that errors.Is
// matches both the kind and the underlying cause.
type kindError struct {
	kind errors.Sentinel
	err  error
}

func (e *kindError) Error() string {
	return string(e.kind) + ": " + e.err.Error()
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.err}
}

func newKindError(kind errors.Sentinel, cause error, details ...interface{}) error {
	err := errors.WithStackDepth(&kindError{kind: kind, err: cause}, 1)
	if len(details) == 0 {
		return err
	}
	return errors.WithDetails(err, details...)
}

func notFound(name string) error {
	return newKindError(ErrNotFound, errors.NewPlain(name), "server", name)
}
