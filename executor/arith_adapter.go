package executor

import (
	"strconv"

	"github.com/opensh/opensh/expand/arith"
	"github.com/opensh/opensh/state"
)

// varLookup/varAssign adapt the shell's variable store to arith's minimal
// Lookup/Assign callback shape for arithmetic-for loops and ((...))
// (spec.md §4.8).
func varLookup(sh *state.Shell) arith.Lookup {
	return func(name string) string {
		switch name {
		case "RANDOM":
			return "0"
		}
		return sh.Vars.Get(name)
	}
}

func varAssign(sh *state.Shell) arith.Assign {
	return func(name, value string) { _ = sh.Vars.Set(name, value) }
}

func globMatch(pattern, s string) (bool, error) {
	return filepathMatch(pattern, s)
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
