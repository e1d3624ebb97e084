package builtin

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/opensh/opensh/state"
	"golang.org/x/sys/unix"
)

// builtinExec implements the POSIX special built-in `exec`: with
// arguments, it replaces the shell process image outright via execve
// instead of forking (spec.md §4.4's launcher contract has no fork step
// here); with no arguments, it returns 0. Redirections written on an
// argument-less exec are bound by the executor for that command only and
// restored when it returns, so they do not persist in the shell.
func builtinExec(sh *state.Shell, args []string) int {
	if len(args) == 1 {
		return 0
	}
	path, err := exec.LookPath(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "exec: %s: not found\n", args[1])
		return 127
	}
	env := append([]string{}, sh.Vars.Exported()...)
	if err := unix.Exec(path, args[1:], env); err != nil {
		fmt.Fprintf(os.Stderr, "exec: %s: %v\n", args[1], err)
		return 126
	}
	return 0
}
