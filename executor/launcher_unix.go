//go:build !windows

package executor

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/opensh/opensh/state"
	"golang.org/x/sys/unix"
)

// sysProcAttrForPipeline returns the SysProcAttr that puts a pipeline's
// processes into their own process group, joining pgid if it is already
// known (the first stage of a pipeline creates the group; later stages
// join it), per spec.md §4.4's process-group discipline.
func sysProcAttrForPipeline(pgid int) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    pgid,
	}
}

// signalProcessGroup delivers sig to every process in pgid.
func signalProcessGroup(pgid int, sig syscall.Signal) error {
	return unix.Kill(-pgid, sig)
}

// foregroundPGID hands terminal control to pgid, restoring the shell's own
// group afterward. Errors are tolerated: a script running with stdin
// redirected from a file has no controlling terminal to arbitrate.
func foregroundPGID(pgid int) (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	shellPGID, gerr := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
	if gerr != nil {
		return func() {}, nil
	}
	if serr := unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid); serr != nil {
		return func() {}, nil
	}
	return func() {
		_ = unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, shellPGID)
	}, nil
}

func waitProcess(pid int) (state.ProcState, int, bool, int) {
	var ws syscall.WaitStatus
	_, err := syscall.Wait4(pid, &ws, 0, nil)
	if err != nil {
		return state.ProcDone, -1, false, 0
	}
	switch {
	case ws.Exited():
		return state.ProcDone, ws.ExitStatus(), false, 0
	case ws.Signaled():
		return state.ProcDone, 128 + int(ws.Signal()), true, int(ws.Signal())
	case ws.Stopped():
		return state.ProcStopped, 0, false, int(ws.StopSignal())
	}
	return state.ProcDone, 0, false, 0
}

func newCmd(path string, argv, env []string) *exec.Cmd {
	cmd := &exec.Cmd{Path: path, Args: argv, Env: env}
	return cmd
}
