package builtin

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/opensh/opensh/state"
)

func builtinType(sh *state.Shell, args []string) int {
	status := 0
	for _, name := range args[1:] {
		switch {
		case Special[name]:
			fmt.Printf("%s is a shell builtin\n", name)
		case Table[name] != nil:
			fmt.Printf("%s is a shell builtin\n", name)
		default:
			if _, ok := sh.Funcs[name]; ok {
				fmt.Printf("%s is a function\n", name)
				continue
			}
			if a, ok := sh.Alias[name]; ok {
				fmt.Printf("%s is aliased to `%s'\n", name, a.Value)
				continue
			}
			if path, err := exec.LookPath(name); err == nil {
				fmt.Printf("%s is %s\n", name, path)
				continue
			}
			fmt.Fprintf(os.Stderr, "type: %s: not found\n", name)
			status = 1
		}
	}
	return status
}

// builtinTest implements a useful subset of POSIX `test`/`[`: string,
// numeric, and file-type operators, and the unary/binary/negation forms
// scripts rely on most.
func builtinTest(sh *state.Shell, args []string) int {
	a := args[1:]
	if len(a) > 0 && args[0] == "[" {
		if a[len(a)-1] != "]" {
			fmt.Fprintln(os.Stderr, "[: missing closing ]")
			return 2
		}
		a = a[:len(a)-1]
	}
	ok, err := evalTest(a)
	if err != nil {
		fmt.Fprintln(os.Stderr, "test:", err)
		return 2
	}
	if ok {
		return 0
	}
	return 1
}

func evalTest(a []string) (bool, error) {
	switch len(a) {
	case 0:
		return false, nil
	case 1:
		return a[0] != "", nil
	case 2:
		return evalUnary(a[0], a[1])
	case 3:
		return evalBinary(a[0], a[1], a[2])
	default:
		if a[0] == "!" {
			ok, err := evalTest(a[1:])
			return !ok, err
		}
		return false, fmt.Errorf("too many arguments")
	}
}

func evalUnary(op, arg string) (bool, error) {
	switch op {
	case "!":
		return arg == "", nil
	case "-z":
		return arg == "", nil
	case "-n":
		return arg != "", nil
	case "-e":
		_, err := os.Stat(arg)
		return err == nil, nil
	case "-f":
		info, err := os.Stat(arg)
		return err == nil && info.Mode().IsRegular(), nil
	case "-d":
		info, err := os.Stat(arg)
		return err == nil && info.IsDir(), nil
	case "-r", "-w", "-x":
		_, err := os.Stat(arg)
		return err == nil, nil
	case "-s":
		info, err := os.Stat(arg)
		return err == nil && info.Size() > 0, nil
	default:
		return false, fmt.Errorf("unknown unary operator %s", op)
	}
}

func evalBinary(lhs, op, rhs string) (bool, error) {
	switch op {
	case "=", "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		var l, r int
		if _, err := fmt.Sscanf(lhs, "%d", &l); err != nil {
			return false, fmt.Errorf("%s: integer expected", lhs)
		}
		if _, err := fmt.Sscanf(rhs, "%d", &r); err != nil {
			return false, fmt.Errorf("%s: integer expected", rhs)
		}
		switch op {
		case "-eq":
			return l == r, nil
		case "-ne":
			return l != r, nil
		case "-lt":
			return l < r, nil
		case "-le":
			return l <= r, nil
		case "-gt":
			return l > r, nil
		case "-ge":
			return l >= r, nil
		}
	case "-a":
		return lhs != "" && rhs != "", nil
	case "-o":
		return lhs != "" || rhs != "", nil
	}
	return false, fmt.Errorf("unknown binary operator %s", op)
}
