package executor

import (
	"os"

	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/expand"
	"github.com/opensh/opensh/state"
)

// savedFD remembers one real OS file descriptor's prior binding so it can
// be restored after a built-in or block finishes running with redirections
// bound directly onto fd 0/1/2 (spec.md §9, Open Question (a): built-ins
// run in the shell process with dup/dup2 fd save-restore).
type savedFD struct {
	target int
	saved  *os.File
}

// bindRedirections opens each redirection's target and dup2's it onto the
// real fd 0/1/2, returning a restore function. Heredoc bodies are written
// to an anonymous pipe and wired to stdin.
func (ex *Executor) bindRedirections(sh *state.Shell, redirs []ast.Redirection) (restore func(), err error) {
	var saves []savedFD
	var opened []*os.File

	restore = func() {
		for _, f := range opened {
			_ = f.Close()
		}
		for i := len(saves) - 1; i >= 0; i-- {
			s := saves[i]
			_ = dup2FD(int(s.saved.Fd()), s.target)
			_ = s.saved.Close()
		}
	}

	for _, r := range redirs {
		fd := targetFD(r)
		saved, serr := saveFD(fd)
		if serr != nil {
			restore()
			return nil, newErr(ReasonRedirectFailed, "save fd %d: %v", fd, serr)
		}
		saves = append(saves, savedFD{target: fd, saved: saved})

		switch r.Kind {
		case ast.RedirInput:
			path, e := expand.Word(r.Target, sh, ex.expandConfig())
			if e != nil {
				restore()
				return nil, e
			}
			f, oerr := os.Open(path)
			if oerr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%s: %v", path, oerr)
			}
			opened = append(opened, f)
			if derr := dup2FD(int(f.Fd()), fd); derr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", derr)
			}

		case ast.RedirOutput, ast.RedirOutputClobber:
			path, e := expand.Word(r.Target, sh, ex.expandConfig())
			if e != nil {
				restore()
				return nil, e
			}
			if sh.Options.NoClobber && r.Kind != ast.RedirOutputClobber {
				if _, statErr := os.Stat(path); statErr == nil {
					restore()
					return nil, newErr(ReasonRedirectFailed, "%s: cannot overwrite existing file", path)
				}
			}
			f, oerr := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if oerr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%s: %v", path, oerr)
			}
			opened = append(opened, f)
			if derr := dup2FD(int(f.Fd()), fd); derr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", derr)
			}

		case ast.RedirOutputAppend:
			path, e := expand.Word(r.Target, sh, ex.expandConfig())
			if e != nil {
				restore()
				return nil, e
			}
			f, oerr := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
			if oerr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%s: %v", path, oerr)
			}
			opened = append(opened, f)
			if derr := dup2FD(int(f.Fd()), fd); derr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", derr)
			}

		case ast.RedirInputOutput:
			path, e := expand.Word(r.Target, sh, ex.expandConfig())
			if e != nil {
				restore()
				return nil, e
			}
			f, oerr := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
			if oerr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%s: %v", path, oerr)
			}
			opened = append(opened, f)
			if derr := dup2FD(int(f.Fd()), fd); derr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", derr)
			}

		case ast.RedirDupIn, ast.RedirDupOut:
			target, e := expand.Word(r.Target, sh, ex.expandConfig())
			if e != nil {
				restore()
				return nil, e
			}
			if target == "-" {
				_ = closeFD(fd)
				continue
			}
			srcFD, perr := parseFDNumber(target)
			if perr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", perr)
			}
			if derr := dup2FD(srcFD, fd); derr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", derr)
			}

		case ast.RedirHeredoc, ast.RedirHeredocStrip, ast.RedirHeredocQuoted:
			body, e := expandHeredocBody(r, sh, ex.expandConfig())
			if e != nil {
				restore()
				return nil, e
			}
			pr, pw, perr := os.Pipe()
			if perr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", perr)
			}
			go writeHeredocBody(pw, body)
			opened = append(opened, pr)
			if derr := dup2FD(int(pr.Fd()), fd); derr != nil {
				restore()
				return nil, newErr(ReasonRedirectFailed, "%v", derr)
			}
		}
	}
	return restore, nil
}

// expandHeredocBody honors the quoted-delimiter rule (spec.md §4.1): a
// quoted heredoc delimiter (<<'EOF') suppresses expansion of the body
// entirely.
func expandHeredocBody(r ast.Redirection, sh *state.Shell, _ expand.Config) (string, error) {
	if r.Kind == ast.RedirHeredocQuoted {
		return r.Heredoc, nil
	}
	return expand.Text(r.Heredoc, sh)
}

func writeHeredocBody(w *os.File, body string) {
	defer w.Close()
	_, _ = w.WriteString(body)
}

func targetFD(r ast.Redirection) int {
	if r.HasFD {
		return r.FD
	}
	switch r.Kind {
	case ast.RedirInput, ast.RedirDupIn, ast.RedirHeredoc, ast.RedirHeredocStrip, ast.RedirHeredocQuoted:
		return 0
	default:
		return 1
	}
}

func parseFDNumber(s string) (int, error) {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, newErr(ReasonRedirectFailed, "bad file descriptor %q", s)
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, nil
}
