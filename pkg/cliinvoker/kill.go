//go:build !windows

package cliinvoker

import (
	"os/exec"
	"syscall"
	"time"
)

// killProcessGroup terminates the process group rooted at cmd's child,
// signalling SIGTERM first and escalating to SIGKILL after grace if the
// group hasn't exited. cmd.Process must be non-nil and started with
// SysProcAttr{Setpgid: true} so the child's pid doubles as its process
// group id.
func killProcessGroup(cmd *exec.Cmd, grace time.Duration, done <-chan struct{}) {
	if cmd.Process == nil {
		return
	}
	killProcessGroupByPID(cmd.Process.Pid, grace, done)
}

// killProcessGroupByPID is killProcessGroup for callers that only have the
// pid on record (e.g. the shutdown sweep over the subprocess registry)
// rather than the original *exec.Cmd. done, if non-nil, lets the caller
// short-circuit the grace wait once the process has already exited.
func killProcessGroupByPID(pgid int, grace time.Duration, done <-chan struct{}) {
	_ = syscall.Kill(-pgid, syscall.SIGTERM)

	if done != nil {
		select {
		case <-done:
			return
		case <-time.After(grace):
		}
	} else {
		time.Sleep(grace)
	}

	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}
