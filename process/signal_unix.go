//go:build unix

package process

import (
	"os"
	"os/exec"
	"syscall"

	"emperror.dev/errors"
	"golang.org/x/sys/unix"
)

// setProcessGroup puts the login shell in its own group, so that killing the
// group also takes down whatever the shell started.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(p *os.Process) error {
	err := unix.Kill(-p.Pid, unix.SIGKILL)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	// fall back to the leader alone, e.g. when the group is not ours to signal
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
