//go:build windows

package cliinvoker

import (
	"os/exec"
	"strconv"
	"time"
)

// killProcessGroup tree-kills cmd's child on Windows, where there is no
// POSIX process-group/signal model to rely on. taskkill /T walks the
// process tree so grandchildren spawned by the CLI binary are reaped too;
// /F skips the graceful-termination request Windows has no SIGTERM
// equivalent for.
func killProcessGroup(cmd *exec.Cmd, grace time.Duration, done <-chan struct{}) {
	if cmd.Process == nil {
		return
	}
	killProcessGroupByPID(cmd.Process.Pid, grace, done)
}

// killProcessGroupByPID is killProcessGroup for callers that only have the
// pid on record (e.g. the shutdown sweep over the subprocess registry)
// rather than the original *exec.Cmd. grace and done are accepted to match
// the POSIX signature but unused: taskkill /F is already unconditional.
func killProcessGroupByPID(pid int, grace time.Duration, done <-chan struct{}) {
	_ = exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}
