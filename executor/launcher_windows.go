//go:build windows

package executor

import (
	"os/exec"
	"syscall"

	"github.com/opensh/opensh/state"
)

func sysProcAttrForPipeline(pgid int) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

func signalProcessGroup(pgid int, sig syscall.Signal) error {
	return nil
}

func foregroundPGID(pgid int) (restore func(), err error) {
	return func() {}, nil
}

func waitProcess(pid int) (state.ProcState, int, bool, int) {
	return state.ProcDone, 0, false, 0
}

func newCmd(path string, argv, env []string) *exec.Cmd {
	return &exec.Cmd{Path: path, Args: argv, Env: env}
}
