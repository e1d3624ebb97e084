// Package builtin implements the shell's built-in command catalog: the
// POSIX special built-ins and a small regular-built-in set, each behind a
// uniform Func signature so the executor's strategy chain can dispatch to
// them the same way it dispatches to anything else (spec.md §4.3, "the
// separate small program behind a uniform interface"; SPEC_FULL.md §4.7).
package builtin

import "github.com/opensh/opensh/state"

// Func is the uniform signature every built-in implements. It returns the
// command's exit status directly; control-flow built-ins (return, exit,
// break, continue) additionally set sh.Pending, which the executor checks
// after the call returns.
type Func func(sh *state.Shell, args []string) int

// Special marks the POSIX "special" built-ins: they are not subject to
// PATH search or function shadowing, and they run before the
// alias/function/external tiers of the strategy chain (spec.md §4.3). A
// failing special built-in returns its status like any other command; it
// does not terminate a non-interactive shell.
var Special = map[string]bool{
	":": true, "break": true, "continue": true, "eval": true, "exec": true,
	"exit": true, "export": true, "readonly": true, "return": true,
	"set": true, "shift": true, "times": true, "trap": true, "unset": true,
}

// Table is the full built-in registry, special and regular alike.
var Table = map[string]Func{
	":":        builtinColon,
	"true":     builtinTrue,
	"false":    builtinFalse,
	"break":    builtinBreak,
	"continue": builtinContinue,
	"exit":     builtinExit,
	"return":   builtinReturn,
	"export":   builtinExport,
	"readonly": builtinReadonly,
	"unset":    builtinUnset,
	"shift":    builtinShift,
	"set":      builtinSet,
	"eval":     builtinEval,
	"cd":       builtinCd,
	"pwd":      builtinPwd,
	"echo":     builtinEcho,
	"read":     builtinRead,
	"type":     builtinType,
	"test":     builtinTest,
	"[":        builtinTest,
	"jobs":     builtinJobs,
	"fg":       builtinFg,
	"bg":       builtinBg,
	"wait":     builtinWait,
	"alias":    builtinAlias,
	"unalias":  builtinUnalias,
	"hash":     builtinHash,
	"umask":    builtinUmask,
	"ulimit":   builtinUlimit,
	"shopt":    builtinShopt,
	"getopts":  builtinGetopts,
	"times":    builtinTimes,
	"trap":     builtinTrap,
	"source":   builtinSource,
	".":        builtinSource,
	"exec":     builtinExec,
}

// Lookup returns the Func registered for name, if any.
func Lookup(name string) (Func, bool) {
	f, ok := Table[name]
	return f, ok
}

func builtinColon(sh *state.Shell, args []string) int { return 0 }

func builtinTrue(sh *state.Shell, args []string) int { return 0 }

func builtinFalse(sh *state.Shell, args []string) int { return 1 }
