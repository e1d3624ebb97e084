package executor

import (
	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/state"
)

// callFunction runs a function body with positional parameters rebound to
// args and a fresh local variable scope, absorbing any break/continue that
// escapes its body uncaught (spec.md §9, Open Question (b)) and catching
// `return` at the function boundary.
func (ex *Executor) callFunction(def state.FuncDef, args []string) (int, error) {
	sh := ex.Shell
	savedArgs := sh.ScriptArgs
	sh.ScriptArgs = args
	sh.Vars.PushScope()
	sh.FuncDepth++

	defer func() {
		sh.FuncDepth--
		sh.Vars.PopScope()
		sh.ScriptArgs = savedArgs
	}()

	body, _ := def.Body.(ast.Node)
	status, err := ex.execNode(body)
	if err != nil {
		return status, err
	}

	switch sig := sh.Pending.(type) {
	case *state.ReturnSignal:
		sh.Pending = nil
		return sig.Status, nil
	case *state.LoopControl:
		// A break/continue that escaped every enclosing loop inside the
		// function body is absorbed here rather than propagating into the
		// caller's loop (POSIX semantics, not the historical bash leak).
		sh.Pending = nil
		return status, nil
	}
	return status, nil
}
