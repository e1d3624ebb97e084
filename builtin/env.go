package builtin

import (
	"fmt"
	"os"
	"strings"

	"github.com/opensh/opensh/state"
)

func builtinExport(sh *state.Shell, args []string) int {
	if len(args) == 1 {
		for _, kv := range sh.Vars.Exported() {
			fmt.Println("export " + kv)
		}
		return 0
	}
	for _, a := range args[1:] {
		name, value, hasValue := splitNameValue(a)
		if hasValue {
			if err := sh.Vars.Set(name, value); err != nil {
				fmt.Fprintln(os.Stderr, "export:", err)
				return 1
			}
		}
		sh.Vars.SetAttr(name, state.AttrExported)
	}
	return 0
}

func builtinReadonly(sh *state.Shell, args []string) int {
	if len(args) == 1 {
		for _, kv := range sh.Vars.Exported() {
			fmt.Println("readonly " + kv)
		}
		return 0
	}
	for _, a := range args[1:] {
		name, value, hasValue := splitNameValue(a)
		if hasValue {
			if err := sh.Vars.Set(name, value); err != nil {
				fmt.Fprintln(os.Stderr, "readonly:", err)
				return 1
			}
		}
		sh.Vars.SetAttr(name, state.AttrReadonly)
	}
	return 0
}

func builtinUnset(sh *state.Shell, args []string) int {
	for _, name := range args[1:] {
		sh.Vars.Unset(name)
	}
	return 0
}

func builtinShift(sh *state.Shell, args []string) int {
	n := 1
	if len(args) > 1 {
		fmt.Sscanf(args[1], "%d", &n)
	}
	if n > len(sh.ScriptArgs) {
		return 1
	}
	sh.ScriptArgs = sh.ScriptArgs[n:]
	return 0
}

// builtinSet implements `set -o name` / `set +o name` and the short option
// letters (errexit, nounset, ...), mutating sh.Options in place
// (SPEC_FULL.md §11, "set -o/+o and shopt surfaces").
func builtinSet(sh *state.Shell, args []string) int {
	i := 1
	for i < len(args) {
		a := args[i]
		switch {
		case a == "-o" && i+1 < len(args):
			applyOptionName(sh, args[i+1], true)
			i += 2
		case a == "+o" && i+1 < len(args):
			applyOptionName(sh, args[i+1], false)
			i += 2
		case strings.HasPrefix(a, "-") && a != "-":
			applyOptionLetters(sh, a[1:], true)
			i++
		case strings.HasPrefix(a, "+") && a != "+":
			applyOptionLetters(sh, a[1:], false)
			i++
		default:
			sh.ScriptArgs = append([]string(nil), args[i:]...)
			return 0
		}
	}
	return 0
}

func applyOptionName(sh *state.Shell, name string, on bool) {
	switch name {
	case "errexit":
		sh.Options.ErrExit = on
	case "nounset":
		sh.Options.NoUnset = on
	case "pipefail":
		sh.Options.PipeFail = on
	case "posix":
		sh.Options.PosixMode = on
	case "xtrace":
		sh.Options.XTrace = on
	case "noclobber":
		sh.Options.NoClobber = on
	case "monitor":
		sh.Options.Monitor = on
	}
}

func applyOptionLetters(sh *state.Shell, letters string, on bool) {
	for _, c := range letters {
		switch c {
		case 'e':
			sh.Options.ErrExit = on
		case 'u':
			sh.Options.NoUnset = on
		case 'x':
			sh.Options.XTrace = on
		case 'C':
			sh.Options.NoClobber = on
		}
	}
}

// shoptNames lists the shell options `shopt` can toggle, in report order.
var shoptNames = []string{"nullglob", "failglob"}

// builtinShopt implements `shopt -s name` / `shopt -u name`, the bash
// extension SPEC_FULL.md §6.3/§11 names alongside set -o/+o. With no
// operands it reports every known option's state; a name given without
// -s/-u reports just that one.
func builtinShopt(sh *state.Shell, args []string) int {
	i := 1
	set, unset := false, false
loop:
	for i < len(args) {
		switch args[i] {
		case "-s":
			set = true
			i++
		case "-u":
			unset = true
			i++
		case "-p", "-q":
			i++
		default:
			break loop
		}
	}
	names := args[i:]
	if len(names) == 0 {
		for _, name := range shoptNames {
			reportShoptOption(sh, name)
		}
		return 0
	}
	status := 0
	for _, name := range names {
		switch {
		case set:
			if !applyShoptOption(sh, name, true) {
				fmt.Fprintf(os.Stderr, "shopt: %s: invalid shell option name\n", name)
				status = 1
			}
		case unset:
			if !applyShoptOption(sh, name, false) {
				fmt.Fprintf(os.Stderr, "shopt: %s: invalid shell option name\n", name)
				status = 1
			}
		default:
			if !reportShoptOption(sh, name) {
				status = 1
			}
		}
	}
	return status
}

func applyShoptOption(sh *state.Shell, name string, on bool) bool {
	switch name {
	case "nullglob":
		sh.Options.NullGlob = on
	case "failglob":
		sh.Options.FailGlob = on
	default:
		return false
	}
	return true
}

func reportShoptOption(sh *state.Shell, name string) bool {
	var on bool
	switch name {
	case "nullglob":
		on = sh.Options.NullGlob
	case "failglob":
		on = sh.Options.FailGlob
	default:
		return false
	}
	word := "off"
	if on {
		word = "on"
	}
	fmt.Printf("%s\t%s\n", name, word)
	return true
}

func splitNameValue(a string) (name, value string, hasValue bool) {
	for i := 0; i < len(a); i++ {
		if a[i] == '=' {
			return a[:i], a[i+1:], true
		}
	}
	return a, "", false
}
