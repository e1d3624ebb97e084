package executor

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/builtin"
	"github.com/opensh/opensh/expand"
	"github.com/opensh/opensh/state"
)

// execPipeline runs each stage of a pipeline, wiring stdout of stage i to
// stdin of stage i+1 with os.Pipe, and waits for every stage (spec.md
// §4.4, §4.5). A single-stage pipeline is the overwhelmingly common case
// and runs directly in the current process so builtins like `cd` and
// `export` affect the calling shell, matching ordinary (non-piped) command
// semantics.
func (ex *Executor) execPipeline(n *ast.Pipeline) (int, error) {
	status, err := ex.runPipelineStages(n.Stages)
	if n.Negated {
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
	}
	return status, err
}

func (ex *Executor) runPipelineStages(stages []ast.Node) (int, error) {
	if len(stages) == 1 {
		return ex.execNode(stages[0])
	}

	readers := make([]*os.File, len(stages)-1)
	writers := make([]*os.File, len(stages)-1)
	for i := range readers {
		r, w, err := os.Pipe()
		if err != nil {
			return 1, newErr(ReasonForkFailed, "pipe: %v", err)
		}
		readers[i], writers[i] = r, w
	}

	results := make([]int, len(stages))
	errs := make([]error, len(stages))
	done := make(chan int, len(stages))

	// Every stage of a pipeline shares one process group, with the first
	// stage's pid as its leader (spec.md §4.4, §8's pipeline pgid
	// invariant). pgidReady is closed once that pid is known so later
	// stages can join it before they start.
	var pgid int
	pgidReady := make(chan struct{})

	for i, stage := range stages {
		i, stage := i, stage
		go func() {
			stdin, stdout := os.Stdin, os.Stdout
			if i > 0 {
				stdin = readers[i-1]
			}
			if i < len(stages)-1 {
				stdout = writers[i]
			}
			var onStart func(pid int)
			joinPgid := 0
			if i == 0 {
				onStart = func(pid int) {
					pgid = pid
					close(pgidReady)
				}
			} else {
				<-pgidReady
				joinPgid = pgid
			}
			results[i], errs[i] = ex.runPipelineStage(stage, stdin, stdout, joinPgid, onStart)
			if i > 0 {
				readers[i-1].Close()
			}
			if i < len(stages)-1 {
				writers[i].Close()
			}
			done <- i
		}()
	}
	for range stages {
		<-done
	}
	last := len(stages) - 1
	if ex.Shell.Options.PipeFail {
		for i := last; i >= 0; i-- {
			if results[i] != 0 {
				return results[i], errs[last]
			}
		}
	}
	return results[last], errs[last]
}

// runPipelineStage executes one pipeline stage against explicit stdin/
// stdout files by re-exec'ing the opensh binary with -c against a subshell
// snapshot, so every stage gets true OS-level concurrency regardless of
// whether it is a builtin, function, or external command. This mirrors
// POSIX's own rule that pipeline components execute in a subshell
// environment (see DESIGN.md for why re-exec was chosen over an in-process
// fd-swap, which cannot be made safe across concurrently running stages).
// pgid is the process group to join (0 for the first stage, which creates
// the group); onStart, when non-nil, is called with the started pid so the
// caller can publish it as the group's pgid for later stages to join.
func (ex *Executor) runPipelineStage(stage ast.Node, stdin, stdout *os.File, pgid int, onStart func(pid int)) (int, error) {
	src := unparse(stage)
	if ex.selfPath == "" || src == "" {
		// Fallback: run in-process against a forked shell. Output from
		// builtins still lands on the real fd 1, which is only correct
		// when this stage happens to be the pipeline's last stage. There
		// is no child process here to put in the shared group, so later
		// stages simply join the shell's own pgid instead of deadlocking.
		if onStart != nil {
			onStart(os.Getpid())
		}
		child := ex.Shell.Fork(ex.Shell.ID + ".pipe")
		sub := &Executor{Shell: child, Logger: ex.Logger, Metrics: ex.Metrics, selfPath: ex.selfPath}
		return sub.execNode(stage)
	}
	cmd := newCmd(ex.selfPath, []string{ex.selfPath, "-c", src}, ex.Shell.Vars.Exported())
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = ex.Shell.CWD
	cmd.SysProcAttr = sysProcAttrForPipeline(pgid)
	if err := cmd.Start(); err != nil {
		if onStart != nil {
			onStart(os.Getpid())
		}
		return 127, newErr(ReasonForkFailed, "%v", err)
	}
	if onStart != nil {
		onStart(cmd.Process.Pid)
	}
	err := cmd.Wait()
	return exitStatusOf(err), nil
}

// execBackground launches n (an `&`-suffixed and-or list) as a job in its
// own process group, registered in the job table so `jobs`/`fg`/`bg`/`wait`
// can find it by PID (spec.md §4.5). This requires re-exec'ing the opensh
// binary against unparsed source, the same constraint runPipelineStage has;
// when the list can't be unparsed (it contains expansions), it falls back
// to running in-process against a forked shell with no job-table entry —
// `jobs` simply won't see it, a documented simplification (see DESIGN.md).
func (ex *Executor) execBackground(n *ast.AndOr) (int, error) {
	src := unparse(n)
	if ex.selfPath != "" && src != "" {
		cmd := newCmd(ex.selfPath, []string{ex.selfPath, "-c", src}, ex.Shell.Vars.Exported())
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Dir = ex.Shell.CWD
		cmd.SysProcAttr = sysProcAttrForPipeline(0)
		if err := cmd.Start(); err != nil {
			return 1, newErr(ReasonForkFailed, "%v", err)
		}
		pid := cmd.Process.Pid
		proc := &state.Process{PID: pid, State: state.ProcRunning, CommandText: src}
		job := ex.Shell.Jobs.Add(pid, []*state.Process{proc}, false)
		if ex.Logger != nil {
			ex.Logger.Debug("background job started",
				zap.String("trace_id", job.TraceID), zap.Int("job_id", job.ID), zap.Int("pid", pid), zap.String("cmd", src))
		}
		ex.Shell.LastBgPID = pid
		go func() {
			waitErr := cmd.Wait()
			status := exitStatusOf(waitErr)
			ex.Shell.Jobs.MarkProcessDone(pid, status, false, 0)
		}()
		return 0, nil
	}

	child := ex.Shell.Fork(ex.Shell.ID + ".bg")
	sub := &Executor{Shell: child, Logger: ex.Logger, Metrics: ex.Metrics, selfPath: ex.selfPath}
	go func() {
		status := 0
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
			s, err := sub.execNode(operand)
			status = s
			if err != nil {
				break
			}
		}
	}()
	ex.Shell.LastBgPID = os.Getpid()
	return 0, nil
}

func (ex *Executor) execSimpleCommand(n *ast.SimpleCommand) (int, error) {
	sh := ex.Shell
	cfg := ex.expandConfig()

	if len(n.Words) == 0 {
		for _, a := range n.Assignments {
			if err := ex.applyAssignment(sh, a); err != nil {
				return 1, err
			}
		}
		return 0, nil
	}

	argv, err := expand.Words(n.Words, sh, cfg)
	if err != nil {
		return 1, err
	}
	if len(argv) == 0 {
		return 0, nil
	}

	// Alias substitution is re-tokenize-once: the replacement text is
	// split and spliced in, then resolved exactly once more. A second
	// alias on the replacement's own first word is deliberately not
	// chased again, avoiding infinite self-referential expansion
	// (spec.md §4.3, SPEC_FULL.md §11).
	name := argv[0]
	if alias, ok := sh.Alias[name]; ok {
		merged := strings.Fields(alias.Value)
		merged = append(merged, argv[1:]...)
		if len(merged) > 0 {
			argv = merged
			name = argv[0]
		}
	}

	restore, err := ex.bindRedirections(sh, n.Redirs)
	if err != nil {
		return 1, err
	}
	defer restore()

	// Leading assignments on a command line are scoped to that command's
	// environment in POSIX; opensh applies them to the shell directly
	// instead of unwinding them afterward, trading strict scoping for
	// simplicity (see DESIGN.md).
	for _, a := range n.Assignments {
		if a.Elements != nil {
			vals, verr := expand.Words(a.Elements, sh, cfg)
			if verr != nil {
				return 1, verr
			}
			if err := sh.Vars.SetIndexed(a.Name, vals); err != nil {
				return 1, err
			}
			continue
		}
		val, verr := expand.Word(a.Value, sh, cfg)
		if verr != nil {
			return 1, verr
		}
		if err := sh.Vars.Set(a.Name, val); err != nil {
			return 1, err
		}
		sh.Vars.SetAttr(a.Name, state.AttrExported)
	}

	sh.CommandNumber++
	start := time.Now()
	kind := ex.resolve(name)
	defer ex.recordStrategy(kind, start)

	ex.traceCommand(sh, argv)

	var status int
	switch kind {
	case strategySpecialBuiltin, strategyBuiltin:
		fn, _ := builtin.Lookup(name)
		status = fn(sh, argv)
	case strategyFunction:
		def := sh.Funcs[name]
		status, err = ex.callFunction(def, argv)
	default:
		status, err = ex.runExternal(sh, name, argv)
	}

	return status, err
}

func (ex *Executor) applyAssignment(sh *state.Shell, a ast.Assignment) error {
	if a.Elements != nil {
		vals, err := expand.Words(a.Elements, sh, ex.expandConfig())
		if err != nil {
			return err
		}
		return sh.Vars.SetIndexed(a.Name, vals)
	}
	val, err := expand.Word(a.Value, sh, ex.expandConfig())
	if err != nil {
		return err
	}
	if a.Append {
		val = sh.Vars.Get(a.Name) + val
	}
	return sh.Vars.Set(a.Name, val)
}

func (ex *Executor) runExternal(sh *state.Shell, name string, argv []string) (int, error) {
	path, err := ex.lookupPath(name)
	if err != nil {
		if ex.Metrics != nil {
			ex.Metrics.IncExecFailure("not_found")
		}
		return 127, newErr(ReasonNotFound, "%s: command not found", name)
	}
	cmd := newCmd(path, argv, sh.Vars.Exported())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = sh.CWD
	cmd.SysProcAttr = sysProcAttrForPipeline(0)
	if err := cmd.Start(); err != nil {
		if ex.Metrics != nil {
			ex.Metrics.IncExecFailure("fork_failed")
		}
		return 126, newErr(ReasonForkFailed, "%v", err)
	}
	waitErr := cmd.Wait()
	return exitStatusOf(waitErr), nil
}
