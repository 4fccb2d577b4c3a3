package agent

import "errors"

var (
	// ErrInvalidMessage is returned by Send and Route when a message has no recipient or kind.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrAlreadyStarted is returned when StartAll is called on a dispatcher that has already been started.
	ErrAlreadyStarted = errors.New("dispatcher already started")
	// ErrNotStarted is returned when StopAll is called on a dispatcher that is not running.
	ErrNotStarted = errors.New("dispatcher not started")

	// ErrAlreadyRunning is returned by workers whose Start is called twice.
	ErrAlreadyRunning = errors.New("worker already running")
	// ErrNotRunning is returned by workers whose Stop is called while stopped.
	ErrNotRunning = errors.New("worker not running")
)
