//go:build !windows

package executor

import (
	"os"

	"golang.org/x/sys/unix"
)

// saveFD duplicates fd onto a fresh descriptor, wrapped as an *os.File, so
// it can later be dup2'd back onto fd to undo a redirection.
func saveFD(fd int) (*os.File, error) {
	newFD, err := unix.Dup(fd)
	if err != nil {
		// fd was never open (e.g. fd 3 before any redirection touched it);
		// treat as "nothing to restore" by returning a closed placeholder.
		return os.NewFile(uintptr(^uintptr(0)), "closed"), nil
	}
	unix.CloseOnExec(newFD)
	return os.NewFile(uintptr(newFD), "saved-fd"), nil
}

func dup2FD(src, dst int) error {
	return unix.Dup2(src, dst)
}

func closeFD(fd int) error {
	return unix.Close(fd)
}
