package process

import "time"

type EventKind string

const (
	EventStdout EventKind = "stdout"
	EventStderr EventKind = "stderr"
	EventExit   EventKind = "exit"
)

// Event is one line of output, or the exit notification, of a server instance.
type Event struct {
	Kind     EventKind
	ServerID string
	Instance string
	Data     string
	// Code is set on exit events when the process exited normally. It stays
	// nil when the process was terminated by a signal.
	Code *int
	Time time.Time
}

// Emitter publishes events to the rest of the application. Emit must not
// block for long: it is called from the stream pumps.
type Emitter interface {
	Emit(e Event) error
}

type EmitterFunc func(e Event) error

func (f EmitterFunc) Emit(e Event) error {
	return f(e)
}

type noopEmitter struct{}

func (noopEmitter) Emit(Event) error { return nil }
