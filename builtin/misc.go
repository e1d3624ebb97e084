package builtin

import (
	"fmt"
	"os"
	"time"

	"github.com/opensh/opensh/state"
)

func builtinHash(sh *state.Shell, args []string) int {
	// opensh resolves external commands with exec.LookPath on every call
	// and keeps no hash table to invalidate; `hash` is accepted as a no-op
	// for script compatibility.
	return 0
}

func builtinUmask(sh *state.Shell, args []string) int {
	if len(args) == 1 {
		fmt.Printf("%04o\n", queryUmask())
		return 0
	}
	var mode int
	if _, err := fmt.Sscanf(args[1], "%o", &mode); err != nil {
		fmt.Fprintln(os.Stderr, "umask:", err)
		return 1
	}
	setUmask(mode)
	return 0
}

func builtinGetopts(sh *state.Shell, args []string) int {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "getopts: usage: getopts optstring name [arg...]")
		return 2
	}
	optstring := args[1]
	name := args[2]
	opind := 1
	if v, ok := sh.Vars.Lookup("OPTIND"); ok {
		fmt.Sscanf(v.Scalar, "%d", &opind)
	}
	var positional []string
	if len(args) > 3 {
		positional = args[3:]
	} else {
		positional = sh.ScriptArgs
	}
	if opind-1 >= len(positional) {
		_ = sh.Vars.Set(name, "?")
		return 1
	}
	arg := positional[opind-1]
	if len(arg) < 2 || arg[0] != '-' {
		_ = sh.Vars.Set(name, "?")
		return 1
	}
	opt := string(arg[1])
	idx := indexByte(optstring, arg[1])
	if idx < 0 {
		_ = sh.Vars.Set(name, "?")
		_ = sh.Vars.Set("OPTIND", fmt.Sprint(opind+1))
		return 0
	}
	if idx+1 < len(optstring) && optstring[idx+1] == ':' {
		if len(arg) > 2 {
			_ = sh.Vars.Set("OPTARG", arg[2:])
		} else if opind < len(positional) {
			_ = sh.Vars.Set("OPTARG", positional[opind])
			opind++
		}
	}
	_ = sh.Vars.Set(name, opt)
	_ = sh.Vars.Set("OPTIND", fmt.Sprint(opind+1))
	return 0
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

var shellStart = time.Now()

func builtinTimes(sh *state.Shell, args []string) int {
	elapsed := time.Since(shellStart)
	fmt.Printf("%dm%.3fs %dm%.3fs\n", 0, elapsed.Seconds(), 0, 0.0)
	return 0
}

// builtinTrap registers or queries signal traps (SPEC_FULL.md §11):
// `trap 'cmd' SIG...` registers, `trap '' SIG` ignores, `trap - SIG`
// resets to default, and bare `trap` lists current registrations.
func builtinTrap(sh *state.Shell, args []string) int {
	if len(args) == 1 {
		for sig, action := range sh.Traps {
			fmt.Printf("trap -- %q %s\n", action.Command, sig)
		}
		return 0
	}
	action := args[1]
	for _, sig := range args[2:] {
		switch action {
		case "-":
			delete(sh.Traps, sig)
		case "":
			sh.Traps[sig] = state.TrapAction{Ignore: true}
		default:
			sh.Traps[sig] = state.TrapAction{Command: action}
		}
	}
	return 0
}
