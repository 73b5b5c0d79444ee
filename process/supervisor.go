package process

import (
	"context"
	"fmt"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
)

// Supervisor spawns named servers, keeps them in a registry and pumps their
// output to an Emitter.
type Supervisor struct {
	registry   *registry
	emitter    Emitter
	shell      string
	replace    bool
	errHandler emperror.ErrorHandler
	log        *logrus.Entry
}

type Option func(s *Supervisor)

// WithShell overrides the login shell, which defaults to LoginShell().
func WithShell(shell string) Option {
	return func(s *Supervisor) {
		if shell != "" {
			s.shell = shell
		}
	}
}

// WithReplaceOnSpawn makes Spawn kill and replace a running server of the same
// name instead of failing with ErrAlreadyRunning.
func WithReplaceOnSpawn(replace bool) Option {
	return func(s *Supervisor) {
		s.replace = replace
	}
}

// WithErrorHandler receives emitter failures and panics recovered in pumps.
func WithErrorHandler(handler emperror.ErrorHandler) Option {
	return func(s *Supervisor) {
		if handler != nil {
			s.errHandler = handler
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *Supervisor) {
		if log != nil {
			s.log = log
		}
	}
}

func NewSupervisor(emitter Emitter, opts ...Option) *Supervisor {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	s := &Supervisor{
		registry: newRegistry(),
		emitter:  emitter,
		shell:    LoginShell(),
		log:      logrus.WithField("component", "supervisor"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.errHandler == nil {
		s.errHandler = logErrorHandler(s.log)
	}
	return s
}

// logErrorHandler logs at debug level: a listener going away is expected.
func logErrorHandler(log *logrus.Entry) emperror.ErrorHandler {
	return emperror.ErrorHandlerFunc(func(err error) {
		fields := logrus.Fields{}
		details := errors.GetDetails(err)
		for i := 0; i+1 < len(details); i += 2 {
			fields[fmt.Sprint(details[i])] = details[i+1]
		}
		log.WithFields(fields).WithError(err).Debug("Event delivery failed")
	})
}

// Spawn starts cfg in a login shell and registers it under cfg.ID. It returns
// the pid of the shell.
func (s *Supervisor) Spawn(ctx context.Context, cfg ServerConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, newKindError(ErrSpawn, err, "server", cfg.ID)
	}
	if s.registry.isClosed() {
		return 0, newKindError(ErrClosed, errors.NewPlain("registry closed"), "server", cfg.ID)
	}
	if !s.replace {
		if prev := s.registry.lookup(cfg.ID); prev != nil && prev.Running() {
			return 0, newKindError(ErrAlreadyRunning, errors.NewPlain(cfg.ID),
				"server", cfg.ID, "pid", prev.PID)
		}
	}

	log := s.log.WithField("server", cfg.ID)
	log.Infof("Spawning server with command: %s", cfg.Command)
	log.Debugf("Shell command: %s -l -c %q", s.shell, ShellCommand(cfg))

	h, err := startHandle(s.shell, cfg)
	if err != nil {
		return 0, newKindError(ErrSpawn, err, "server", cfg.ID)
	}

	prev, err := s.registry.insert(h, s.replace)
	if err != nil {
		// lost a race against another spawn of the same name, or a shutdown
		_ = h.terminate()
		_ = h.waitExit()
		return 0, err
	}
	if prev != nil {
		log.WithField("pid", prev.PID).Info("Replacing server")
		if err := prev.terminate(); err != nil {
			log.WithError(err).Warn("Failed to terminate replaced server")
		}
	}

	s.start(h)
	log.WithField("pid", h.PID).Info("Server spawned")
	return h.PID, nil
}

func (s *Supervisor) start(h *Handle) {
	h.pumps.Add(2)
	go s.pump(h, EventStdout, h.stdout)
	go s.pump(h, EventStderr, h.stderr)
	go s.wait(h)
}

// wait reaps the process and publishes its exit once both pumps are done, so
// that exit is always the last event of an instance.
func (s *Supervisor) wait(h *Handle) {
	defer s.registry.waiters.Done()
	log := s.log.WithFields(logrus.Fields{"server": h.Name, "pid": h.PID})

	if err := h.waitExit(); err != nil {
		log.WithError(err).Error("Failed to reap server")
	}
	h.pumps.Wait()
	_ = h.closePipes()

	code := h.ExitCode()
	if code != nil {
		log.Infof("Server exited with code %d", *code)
	} else {
		log.Info("Server terminated by signal")
	}
	s.emit(h, Event{Kind: EventExit, Code: code})
}

// Write sends data to the stdin of the named server. Writes to one server are
// serialized. A deadline or cancellation on ctx bounds the write; without
// one, Write blocks until the child has room in its pipe.
func (s *Supervisor) Write(ctx context.Context, name string, data []byte) error {
	h := s.registry.lookup(name)
	if h == nil {
		return notFound(name)
	}
	s.log.WithField("server", name).Debugf("Writing %d bytes to server", len(data))
	if err := h.write(ctx, data); err != nil {
		return newKindError(ErrIO, err, "server", name, "pid", h.PID)
	}
	return nil
}

// Kill removes the named server and terminates it. Killing an unknown name is
// a no-op.
func (s *Supervisor) Kill(name string) error {
	h := s.registry.remove(name)
	if h == nil {
		return nil
	}
	log := s.log.WithFields(logrus.Fields{"server": name, "pid": h.PID})
	log.Info("Killing server")
	if err := h.terminate(); err != nil {
		return newKindError(ErrIO, err, "server", name, "pid", h.PID)
	}
	log.Info("Server killed")
	return nil
}

// IsRunning reports registry membership. A server that exited on its own stays
// registered until killed or replaced; use List for liveness.
func (s *Supervisor) IsRunning(name string) bool {
	return s.registry.contains(name)
}

func (s *Supervisor) List() []Status {
	handles := s.registry.snapshot()
	res := make([]Status, 0, len(handles))
	for _, h := range handles {
		res = append(res, h.status())
	}
	return res
}

// Shutdown kills every registered server, rejects further spawns, and waits
// for all pumps to finish or ctx to expire.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	var res error
	for _, h := range s.registry.close() {
		s.log.WithFields(logrus.Fields{"server": h.Name, "pid": h.PID}).Info("Stopping server")
		if err := h.terminate(); err != nil {
			res = errors.Append(res, newKindError(ErrIO, err, "server", h.Name, "pid", h.PID))
		}
	}

	done := make(chan struct{})
	go func() {
		s.registry.waiters.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		res = errors.Append(res, errors.WrapIf(ctx.Err(), "timed out waiting for servers"))
	}
	return res
}
