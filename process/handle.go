package process

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
)

// Handle owns the resources of one spawned server: its stdin, the read ends of
// stdout and stderr, and the process itself.
type Handle struct {
	Name     string
	Instance string
	PID      int
	Config   ServerConfig
	Started  time.Time

	cmd    *exec.Cmd
	ctx    context.Context
	cancel context.CancelFunc

	stdinMu sync.Mutex
	stdin   *os.File
	stdout  *os.File
	stderr  *os.File

	closeOnce sync.Once
	closeErr  error

	exited chan struct{} // closed once cmd.Wait returned
	pumps  sync.WaitGroup
}

// aLongTimeAgo is a deadline in the past, used to abort a blocked write.
var aLongTimeAgo = time.Unix(1, 0)

func closeFiles(files ...*os.File) error {
	var res error
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			res = errors.Append(res, err)
		}
	}
	return res
}

// startHandle launches cfg inside a login shell with three fresh pipes.
func startHandle(shell string, cfg ServerConfig) (*Handle, error) {
	cmd := exec.Command(shell, loginShellArgs(ShellCommand(cfg))...)
	cmd.Dir = cfg.Dir
	setProcessGroup(cmd)

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, errors.WrapIf(err, "failed to create stdin pipe")
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		_ = closeFiles(stdinR, stdinW)
		return nil, errors.WrapIf(err, "failed to create stdout pipe")
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = closeFiles(stdinR, stdinW, stdoutR, stdoutW)
		return nil, errors.WrapIf(err, "failed to create stderr pipe")
	}
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	err = cmd.Start()
	// the child holds its own copies now
	_ = closeFiles(stdinR, stdoutW, stderrW)
	if err != nil {
		_ = closeFiles(stdinW, stdoutR, stderrR)
		return nil, errors.WrapIf(err, "failed to start command")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Handle{
		Name:     cfg.ID,
		Instance: uuid.New().String(),
		PID:      cmd.Process.Pid,
		Config:   cfg,
		Started:  time.Now(),
		cmd:      cmd,
		ctx:      ctx,
		cancel:   cancel,
		stdin:    stdinW,
		stdout:   stdoutR,
		stderr:   stderrR,
		exited:   make(chan struct{}),
	}, nil
}

// Running reports whether the process has not been reaped yet.
func (h *Handle) Running() bool {
	select {
	case <-h.exited:
		return false
	default:
		return true
	}
}

// ExitCode is nil while running, or when the process was killed by a signal.
func (h *Handle) ExitCode() *int {
	if h.Running() {
		return nil
	}
	ps := h.cmd.ProcessState
	if ps == nil {
		return nil
	}
	code := ps.ExitCode()
	if code < 0 {
		return nil
	}
	return &code
}

func (h *Handle) write(ctx context.Context, data []byte) (err error) {
	h.stdinMu.Lock()
	defer h.stdinMu.Unlock()

	if h.ctx.Err() != nil {
		return errors.WithStack(os.ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return errors.WrapIf(err, "write not started")
	}
	if ctx.Done() != nil {
		fired := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			defer close(fired)
			_ = h.stdin.SetWriteDeadline(aLongTimeAgo)
		})
		defer func() {
			if !stop() {
				<-fired
			}
			_ = h.stdin.SetWriteDeadline(time.Time{})
		}()
	}

	_, err = h.stdin.Write(data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, os.ErrDeadlineExceeded) {
			return errors.WrapIf(ctxErr, "write interrupted")
		}
		return errors.WrapIf(err, "failed to write to stdin")
	}
	return nil
}

func (h *Handle) closePipes() error {
	h.closeOnce.Do(func() {
		h.closeErr = closeFiles(h.stdin, h.stdout, h.stderr)
	})
	return h.closeErr
}

// terminate cancels the pumps, kills the process group and closes every pipe
// end owned by the host. It does not wait for the process to be reaped.
func (h *Handle) terminate() error {
	h.cancel()
	var res error
	// the group outlives a reaped leader when the shell backgrounded children
	if err := killProcessGroup(h.cmd.Process); err != nil {
		res = errors.Append(res, errors.WrapIf(err, "failed to kill process"))
	}
	if err := h.closePipes(); err != nil {
		res = errors.Append(res, errors.WrapIf(err, "failed to close pipes"))
	}
	return res
}

func (h *Handle) waitExit() error {
	defer close(h.exited)
	err := h.cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return errors.WrapIf(err, "failed to wait for command")
	}
	return nil
}

func (h *Handle) status() Status {
	return Status{
		Name:     h.Name,
		Instance: h.Instance,
		PID:      h.PID,
		Command:  h.Config.Command,
		Args:     append([]string(nil), h.Config.Args...),
		Started:  h.Started,
		Running:  h.Running(),
		ExitCode: h.ExitCode(),
	}
}

// Status is a snapshot of one registered server.
type Status struct {
	Name     string
	Instance string
	PID      int
	Command  string
	Args     []string
	Started  time.Time
	Running  bool
	ExitCode *int
}
