package executor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/opensh/opensh/builtin"
	"github.com/opensh/opensh/state"
	"go.uber.org/zap"
)

// strategyKind names one tier of the command-dispatch priority chain
// (spec.md §4.3: special builtin -> builtin -> function -> alias ->
// external).
type strategyKind string

const (
	strategySpecialBuiltin strategyKind = "special_builtin"
	strategyBuiltin        strategyKind = "builtin"
	strategyFunction       strategyKind = "function"
	strategyAlias          strategyKind = "alias"
	strategyExternal       strategyKind = "external"
)

// resolve walks the strategy chain for name and returns which tier
// handles it. Alias resolution is re-tokenize-once: the caller substitutes
// the alias text back into the command line and resolves again, rather
// than this function recursing (spec.md §4.3, SPEC_FULL.md §11).
func (ex *Executor) resolve(name string) strategyKind {
	if builtin.Special[name] {
		return strategySpecialBuiltin
	}
	if _, ok := builtin.Lookup(name); ok {
		return strategyBuiltin
	}
	if _, ok := ex.Shell.Funcs[name]; ok {
		return strategyFunction
	}
	if _, ok := ex.Shell.Alias[name]; ok {
		return strategyAlias
	}
	return strategyExternal
}

func (ex *Executor) recordStrategy(kind strategyKind, start time.Time) {
	if ex.Metrics == nil {
		return
	}
	ex.Metrics.ObserveCommand(string(kind), time.Since(start).Seconds())
}

// lookupPath wraps exec.LookPath, logging the not-found case the way the
// teacher logs external command resolution failures.
func (ex *Executor) lookupPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil && ex.Logger != nil {
		ex.Logger.Debug("command not found", zap.String("name", name))
	}
	return path, err
}

// traceCommand writes the POSIX `+ cmd` xtrace line (spec.md §6, "trace
// mode"; SPEC_FULL.md §6.2 dual destination: logger.Debug AND stderr).
func (ex *Executor) traceCommand(sh *state.Shell, argv []string) {
	if !sh.Options.XTrace {
		return
	}
	if ex.Logger != nil {
		ex.Logger.Debug("xtrace", zap.Strings("argv", argv))
	}
	fmt.Fprintln(os.Stderr, "+ "+strings.Join(argv, " "))
}
