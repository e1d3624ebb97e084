package state

import (
	"os"
	"time"

	"go.uber.org/zap"
)

// Alias is one `alias name=value` binding (spec.md §4.3, "the re-tokenize-
// once dispatch" SPEC_FULL.md §11 describes).
type Alias struct {
	Name  string
	Value string
}

// TrapAction is what a signal trap does when delivered.
type TrapAction struct {
	Command string // empty + Ignore=false means "reset to default"
	Ignore  bool   // trap '' SIG
}

// Shell is the single owner of everything that makes up one shell's live
// state: the variable store, job table, function and alias tables, signal
// traps, and ambient handles (logger, id) shared by every subsystem
// (spec.md §3, "Ownership").
type Shell struct {
	Vars  *Store
	Jobs  *Table
	Funcs map[string]FuncDef
	Alias map[string]Alias
	Traps map[string]TrapAction

	Options *Options

	Logger *zap.Logger
	ID     string // correlation id for this shell/subshell, logs and metrics

	// Pending carries a LoopControl/ReturnSignal/ExitSignal raised by a
	// builtin back across the builtin.Func(...) int boundary to the
	// executor's dispatch loop, which checks it after every command and
	// unwinds accordingly (spec.md §9, Open Question (b): a carried error
	// value, not a panic).
	Pending error

	LastStatus  int
	LastBgPID   int
	ScriptArgs  []string // $1, $2, ... / $@ / $#
	ScriptName  string   // $0
	ShellPID    int
	CWD         string
	LoopDepth   int
	FuncDepth   int
	StartTime   time.Time
	Interactive bool

	// CommandNumber counts commands run in this shell, for PS1's \# escape.
	CommandNumber int

	// Exiting is set once an ExitSignal has been consumed by RunProgram, so
	// an interactive caller running one RunSource per input line can tell
	// "the script ended because of exit" apart from "the last command's
	// exit status happened to match".
	Exiting bool
}

// FuncDef is a stored function body, looked up by name at call time so
// self-referential and mutually-recursive functions resolve naturally
// (spec.md §9, "Cyclic references").
type FuncDef struct {
	Name string
	Body interface{} // *ast.Node; declared as interface{} to avoid an ast<->state import cycle
}

// Options holds the shell options an executing Shell consults on every
// command (booleans are copied in, not looked up through
// config.ConfigManager, so hot paths avoid a map+mutex round trip).
type Options struct {
	ErrExit   bool
	NoUnset   bool
	PipeFail  bool
	PosixMode bool
	XTrace    bool
	NoClobber bool
	Monitor   bool // job control enabled (interactive default)
	IFS       string

	// NullGlob and FailGlob are the bash `shopt` extensions governing a
	// pathname-expansion pattern that matches nothing (SPEC_FULL.md
	// §6.3/§11, spec.md §4.2 phase 7).
	NullGlob bool
	FailGlob bool
}

// New creates a top-level Shell bound to logger, seeding variables from the
// process environment the way a freshly exec'd shell inherits its parent's
// exported variables (spec.md §3, "seeded at shell start from the process
// environment").
func New(logger *zap.Logger, id string) *Shell {
	sh := &Shell{
		Vars:    NewStore(),
		Jobs:    NewTable(),
		Funcs:   make(map[string]FuncDef),
		Alias:   make(map[string]Alias),
		Traps:   make(map[string]TrapAction),
		Options: &Options{IFS: " \t\n"},
		Logger:  logger,
		ID:      id,
	}
	sh.seedEnv()
	sh.ShellPID = os.Getpid()
	sh.StartTime = time.Now()
	if cwd, err := os.Getwd(); err == nil {
		sh.CWD = cwd
	}
	return sh
}

func (sh *Shell) seedEnv() {
	for _, e := range os.Environ() {
		name, value := splitEnv(e)
		if name == "" {
			continue
		}
		_ = sh.Vars.Set(name, value)
		sh.Vars.SetAttr(name, AttrExported)
	}
}

func splitEnv(e string) (string, string) {
	for i := 0; i < len(e); i++ {
		if e[i] == '=' {
			return e[:i], e[i+1:]
		}
	}
	return e, ""
}

// Fork produces a subshell's Shell: a deep logical copy of variables and
// jobs that never writes back to sh (spec.md §3, "A subshell receives a
// deep logical copy ... and its mutations never propagate back").
func (sh *Shell) Fork(id string) *Shell {
	child := &Shell{
		Vars:        sh.Vars.Snapshot(),
		Jobs:        sh.Jobs.Snapshot(),
		Funcs:       cloneFuncs(sh.Funcs),
		Alias:       cloneAlias(sh.Alias),
		Traps:       cloneTraps(sh.Traps),
		Options:     cloneOptions(sh.Options),
		Logger:      sh.Logger,
		ID:          id,
		LastStatus:  sh.LastStatus,
		ScriptArgs:  append([]string(nil), sh.ScriptArgs...),
		ScriptName:  sh.ScriptName,
		ShellPID:    os.Getpid(),
		CWD:         sh.CWD,
		StartTime:   sh.StartTime,
		Interactive: false,
	}
	return child
}

func cloneFuncs(m map[string]FuncDef) map[string]FuncDef {
	out := make(map[string]FuncDef, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAlias(m map[string]Alias) map[string]Alias {
	out := make(map[string]Alias, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTraps(m map[string]TrapAction) map[string]TrapAction {
	out := make(map[string]TrapAction, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneOptions(o *Options) *Options {
	cp := *o
	return &cp
}
