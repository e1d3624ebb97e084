package builtin

import (
	"strconv"

	"github.com/opensh/opensh/state"
)

func builtinBreak(sh *state.Shell, args []string) int {
	levels := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			levels = n
		}
	}
	sh.Pending = &state.LoopControl{IsBreak: true, Levels: levels}
	return 0
}

func builtinContinue(sh *state.Shell, args []string) int {
	levels := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			levels = n
		}
	}
	sh.Pending = &state.LoopControl{IsBreak: false, Levels: levels}
	return 0
}

func builtinExit(sh *state.Shell, args []string) int {
	status := sh.LastStatus
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			status = n & 0xff
		} else {
			status = 2
		}
	}
	sh.Pending = &state.ExitSignal{Status: status}
	return status
}

func builtinReturn(sh *state.Shell, args []string) int {
	status := sh.LastStatus
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			status = n & 0xff
		}
	}
	sh.Pending = &state.ReturnSignal{Status: status}
	return status
}
