package executor

import (
	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/expand"
	"github.com/opensh/opensh/expand/arith"
	"github.com/opensh/opensh/state"
)

func (ex *Executor) execIf(n *ast.If) (int, error) {
	status, err := ex.execNode(n.Cond)
	if err != nil || ex.Shell.Pending != nil {
		return status, err
	}
	if status == 0 {
		return ex.execNode(n.Then)
	}
	for _, elif := range n.Elifs {
		status, err = ex.execNode(elif.Cond)
		if err != nil || ex.Shell.Pending != nil {
			return status, err
		}
		if status == 0 {
			return ex.execNode(elif.Then)
		}
	}
	if n.Else != nil {
		return ex.execNode(n.Else)
	}
	return 0, nil
}

func (ex *Executor) execWhile(n *ast.While) (int, error) {
	status := 0
	ex.Shell.LoopDepth++
	defer func() { ex.Shell.LoopDepth-- }()
	for {
		condStatus, err := ex.execNode(n.Cond)
		if err != nil {
			return condStatus, err
		}
		if ex.Shell.Pending != nil {
			return condStatus, nil
		}
		want := condStatus == 0
		if n.Until {
			want = condStatus != 0
		}
		if !want {
			break
		}
		status, err = ex.execNode(n.Body)
		if err != nil {
			return status, err
		}
		if brk, cont := ex.consumeLoopControl(); brk {
			break
		} else if cont {
			continue
		} else if ex.Shell.Pending != nil {
			return status, nil
		}
	}
	return status, nil
}

func (ex *Executor) execFor(n *ast.For) (int, error) {
	ex.Shell.LoopDepth++
	defer func() { ex.Shell.LoopDepth-- }()
	status := 0

	if n.Arithmetic {
		if n.ArithInit != "" {
			if _, err := arith.Eval(n.ArithInit, varLookup(ex.Shell), varAssign(ex.Shell)); err != nil {
				return 1, err
			}
		}
		for {
			if n.ArithCond != "" {
				cond, err := arith.Eval(n.ArithCond, varLookup(ex.Shell), varAssign(ex.Shell))
				if err != nil {
					return 1, err
				}
				if cond == 0 {
					break
				}
			}
			var err error
			status, err = ex.execNode(n.Body)
			if err != nil {
				return status, err
			}
			if brk, cont := ex.consumeLoopControl(); brk {
				break
			} else if cont {
				// fall through to post-expression
			} else if ex.Shell.Pending != nil {
				return status, nil
			}
			if n.ArithPost != "" {
				if _, err := arith.Eval(n.ArithPost, varLookup(ex.Shell), varAssign(ex.Shell)); err != nil {
					return 1, err
				}
			}
		}
		return status, nil
	}

	values, err := expand.Words(n.Words, ex.Shell, ex.expandConfig())
	if err != nil {
		return 1, err
	}
	if n.Words == nil {
		values = ex.Shell.ScriptArgs
	}
	for _, v := range values {
		if err := ex.Shell.Vars.Set(n.Var, v); err != nil {
			return 1, err
		}
		status, err = ex.execNode(n.Body)
		if err != nil {
			return status, err
		}
		if brk, cont := ex.consumeLoopControl(); brk {
			break
		} else if cont {
			continue
		} else if ex.Shell.Pending != nil {
			return status, nil
		}
	}
	return status, nil
}

// consumeLoopControl inspects sh.Pending for a LoopControl signal raised
// by break/continue. It decrements multi-level break/continue counts and
// reports whether the current loop should stop (brk) or restart its next
// iteration (cont); when neither, the caller must re-check sh.Pending for
// a ReturnSignal/ExitSignal that should keep propagating.
func (ex *Executor) consumeLoopControl() (brk, cont bool) {
	lc, ok := ex.Shell.Pending.(*state.LoopControl)
	if !ok {
		return false, false
	}
	if lc.Levels > 1 {
		lc.Levels--
		return true, false
	}
	ex.Shell.Pending = nil
	return lc.IsBreak, !lc.IsBreak
}

func (ex *Executor) execCase(n *ast.Case) (int, error) {
	subject, err := expand.Word(n.Word, ex.Shell, ex.expandConfig())
	if err != nil {
		return 1, err
	}
	status := 0
	for i, item := range n.Items {
		matched := false
		for _, pw := range item.Patterns {
			pat, perr := expand.Word(pw, ex.Shell, ex.expandConfig())
			if perr != nil {
				return 1, perr
			}
			if ok, _ := matchPattern(pat, subject); ok {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if item.Body != nil {
			status, err = ex.execNode(item.Body)
			if err != nil || ex.Shell.Pending != nil {
				return status, err
			}
		}
		if item.Fallthru && i+1 < len(n.Items) {
			next := n.Items[i+1]
			if next.Body != nil {
				return ex.execNode(next.Body)
			}
		}
		if !item.TestNext {
			return status, nil
		}
	}
	return status, nil
}

func matchPattern(pattern, s string) (bool, error) {
	return globMatch(pattern, s)
}
