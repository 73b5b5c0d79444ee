package process

import (
	"io"
	"time"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
)

// pump forwards every line of r as an event until r ends or h is cancelled.
func (s *Supervisor) pump(h *Handle, kind EventKind, r io.Reader) {
	defer h.pumps.Done()
	log := s.log.WithFields(logrus.Fields{"server": h.Name, "pid": h.PID})

	lines := NewLineReader(r)
	for line := range lines.Lines() {
		if h.ctx.Err() != nil {
			return
		}
		if kind == EventStderr {
			log.Debugf("stderr: %s", line)
		}
		s.emit(h, Event{Kind: kind, Data: line})
	}
	if err := lines.Err(); err != nil && h.ctx.Err() == nil {
		log.WithError(err).Errorf("Error reading %s", kind)
	}
}

// emit never fails the caller: errors and panics go to the error handler.
func (s *Supervisor) emit(h *Handle, e Event) {
	defer emperror.HandleRecover(s.errHandler)

	e.ServerID = h.Name
	e.Instance = h.Instance
	e.Time = time.Now()
	if err := s.emitter.Emit(e); err != nil {
		s.errHandler.Handle(errors.WrapIfWithDetails(err, "failed to emit event",
			"server", h.Name, "kind", string(e.Kind)))
	}
}
