//go:build !windows

package cli

import (
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// forceRefreshPrompt sends SIGWINCH to the current process to make the
// prompt redraw itself, used after a background job prints to the
// terminal out of band with the foreground read loop.
func (r *REPL) forceRefreshPrompt() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		r.logger.Warn("could not find process to force a prompt refresh", zap.Error(err))
		return
	}
	if err := p.Signal(unix.SIGWINCH); err != nil {
		r.logger.Warn("could not send SIGWINCH to force a prompt refresh", zap.Error(err))
	}
}
