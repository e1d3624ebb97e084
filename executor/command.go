package executor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// runCapture implements command substitution $(...)/`...` (spec.md §3.4):
// raw is run as a fresh chunk of source against a forked shell with stdout
// redirected into a pipe, and the captured output is returned with
// trailing newlines stripped.
func (ex *Executor) runCapture(raw string) (string, error) {
	prog, err := parseSource(raw)
	if err != nil {
		return "", newErr(ReasonSyntax, "command substitution: %v", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return "", newErr(ReasonForkFailed, "pipe: %v", err)
	}

	child := ex.Shell.Fork(ex.Shell.ID + ".cmdsubst")
	sub := &Executor{Shell: child, Logger: ex.Logger, Metrics: ex.Metrics, selfPath: ex.selfPath}

	savedStdout := os.Stdout
	os.Stdout = w

	out := make(chan []byte, 1)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		out <- buf.Bytes()
	}()

	_, runErr := sub.RunProgram(prog)

	os.Stdout = savedStdout
	w.Close()
	captured := <-out
	r.Close()

	ex.Shell.LastStatus = child.LastStatus

	text := strings.TrimRight(string(captured), "\n")
	return text, runErr
}

// runProcessSubst implements <(...) and >(...) (spec.md §3.5, Open
// Question (c)): limited to POSIX platforms exposing /dev/fd, since that
// is the only portable mechanism for handing a pipe descriptor to another
// process as a pathname.
func (ex *Executor) runProcessSubst(raw string, output bool) (string, error) {
	if runtime.GOOS == "windows" {
		return "", newErr(ReasonUnsupportedPlatform, "process substitution is not supported on %s", runtime.GOOS)
	}
	if _, err := os.Stat("/dev/fd"); err != nil {
		return "", newErr(ReasonUnsupportedPlatform, "process substitution requires /dev/fd")
	}

	prog, err := parseSource(raw)
	if err != nil {
		return "", newErr(ReasonSyntax, "process substitution: %v", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return "", newErr(ReasonForkFailed, "pipe: %v", err)
	}

	child := ex.Shell.Fork(ex.Shell.ID + ".procsubst")
	sub := &Executor{Shell: child, Logger: ex.Logger, Metrics: ex.Metrics, selfPath: ex.selfPath}

	var path string
	var ours, theirs *os.File
	if output {
		// >(...): the substituted command reads our end; the caller writes
		// to the returned path.
		ours, theirs = w, r
	} else {
		// <(...): the substituted command writes our end; the caller reads
		// from the returned path.
		ours, theirs = r, w
	}
	path = fmt.Sprintf("/dev/fd/%d", theirs.Fd())

	go func() {
		defer ours.Close()
		if output {
			savedStdin := os.Stdin
			os.Stdin = ours
			sub.RunProgram(prog)
			os.Stdin = savedStdin
		} else {
			savedStdout := os.Stdout
			os.Stdout = ours
			sub.RunProgram(prog)
			os.Stdout = savedStdout
		}
	}()

	return path, nil
}
