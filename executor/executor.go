package executor

import (
	"os"

	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/builtin"
	"github.com/opensh/opensh/expand"
	"github.com/opensh/opensh/state"
	"go.uber.org/zap"
)

// Metrics is the subset of the metrics package an Executor reports
// through, kept as an interface so executor never imports metrics
// directly (it is an optional, disabled-by-default ambient concern; see
// SPEC_FULL.md §6.4).
type Metrics interface {
	ObserveCommand(strategy string, seconds float64)
	IncExecFailure(reason string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCommand(string, float64) {}
func (noopMetrics) IncExecFailure(string)          {}

// Executor walks an *ast.Program against a *state.Shell (spec.md §4.3).
type Executor struct {
	Shell       *state.Shell
	Logger      *zap.Logger
	Metrics     Metrics
	selfPath    string // path to the opensh binary, for re-exec'd pipeline stages
}

// New creates an Executor bound to sh. It also wires builtin.EvalHook so
// `eval`/`source` can run back through this Executor without builtin
// importing executor (see builtin/eval.go).
func New(sh *state.Shell, logger *zap.Logger) *Executor {
	ex := &Executor{Shell: sh, Logger: logger, Metrics: noopMetrics{}}
	if p, err := os.Executable(); err == nil {
		ex.selfPath = p
	}
	builtin.EvalHook = func(sh *state.Shell, src string) int {
		status, _ := ex.RunSource(src)
		return status
	}
	return ex
}

func (ex *Executor) expandConfig() expand.Config {
	return expand.Config{
		CommandSubst: ex.runCapture,
		ProcessSubst: ex.runProcessSubst,
	}
}

// RunProgram executes every top-level and-or list in prog in sequence
// (spec.md §4.3). It stops early on an ExitSignal and otherwise returns
// the last command's exit status.
func (ex *Executor) RunProgram(prog *ast.Program) (int, error) {
	status := 0
	for _, list := range prog.Lists {
		s, err := ex.execAndOr(list)
		status = s
		ex.Shell.LastStatus = status
		if err != nil {
			return status, err
		}
		if sig, ok := ex.Shell.Pending.(*state.ExitSignal); ok {
			ex.Shell.Pending = nil
			ex.Shell.Exiting = true
			return sig.Status, nil
		}
		if ex.Shell.Options.ErrExit && status != 0 {
			return status, nil
		}
	}
	return status, nil
}

// RunSource lexes, parses, and runs a fresh chunk of shell source against
// the same Shell (eval, source/., subshell command substitution bodies).
func (ex *Executor) RunSource(src string) (int, error) {
	prog, err := parseSource(src)
	if err != nil {
		return 2, err
	}
	return ex.RunProgram(prog)
}

func (ex *Executor) execNode(n ast.Node) (int, error) {
	switch v := n.(type) {
	case *ast.Program:
		return ex.RunProgram(v)
	case *ast.AndOr:
		return ex.execAndOr(v)
	case *ast.Pipeline:
		return ex.execPipeline(v)
	case *ast.SimpleCommand:
		return ex.execSimpleCommand(v)
	case *ast.If:
		return ex.execIf(v)
	case *ast.While:
		return ex.execWhile(v)
	case *ast.For:
		return ex.execFor(v)
	case *ast.Case:
		return ex.execCase(v)
	case *ast.Function:
		ex.Shell.Funcs[v.Name] = state.FuncDef{Name: v.Name, Body: v.Body}
		return 0, nil
	case *ast.Subshell:
		return ex.execSubshell(v)
	case *ast.BraceGroup:
		return ex.execBraceGroup(v)
	default:
		return 0, nil
	}
}

func (ex *Executor) execAndOr(n *ast.AndOr) (int, error) {
	if n.Background {
		return ex.execBackground(n)
	}
	status := 0
	var err error
	for i, operand := range n.Operands {
		if i > 0 {
			op := n.Ops[i-1]
			if op == ast.OpAnd && status != 0 {
				continue
			}
			if op == ast.OpOr && status == 0 {
				continue
			}
		}
		status, err = ex.execNode(operand)
		if err != nil || ex.Shell.Pending != nil {
			return status, err
		}
	}
	return status, nil
}

func (ex *Executor) execBraceGroup(n *ast.BraceGroup) (int, error) {
	restore, err := ex.bindRedirections(ex.Shell, n.Redirs)
	if err != nil {
		return 1, err
	}
	defer restore()
	return ex.execNode(n.Body)
}

func (ex *Executor) execSubshell(n *ast.Subshell) (int, error) {
	child := ex.Shell.Fork(ex.Shell.ID + ".sub")
	sub := &Executor{Shell: child, Logger: ex.Logger, Metrics: ex.Metrics, selfPath: ex.selfPath}
	restore, err := sub.bindRedirections(child, n.Redirs)
	if err != nil {
		return 1, err
	}
	defer restore()
	return sub.execNode(n.Body)
}
