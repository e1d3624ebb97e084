//go:build windows

package cli

// forceRefreshPrompt is a no-op on Windows, where SIGWINCH has no
// equivalent.
func (r *REPL) forceRefreshPrompt() {
}
