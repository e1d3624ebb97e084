package builtin

import (
	"fmt"
	"os"
	"strings"

	"github.com/opensh/opensh/state"
)

// EvalHook lets the executor inject itself for `eval` and `source`/`.`
// without builtin importing executor, which would cycle back (executor
// already imports builtin for dispatch). The executor sets this once at
// startup.
var EvalHook func(sh *state.Shell, src string) int

func builtinEval(sh *state.Shell, args []string) int {
	if EvalHook == nil {
		return 0
	}
	return EvalHook(sh, strings.Join(args[1:], " "))
}

func builtinSource(sh *state.Shell, args []string) int {
	if EvalHook == nil || len(args) < 2 {
		return 0
	}
	body, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "source:", err)
		return 1
	}
	return EvalHook(sh, string(body))
}
