package builtin

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/opensh/opensh/state"
)

// builtinEcho implements echo with the -n (no trailing newline) and -e
// (interpret backslash escapes) options bash ships.
func builtinEcho(sh *state.Shell, args []string) int {
	rest := args[1:]
	newline := true
	interpret := false
	for len(rest) > 0 {
		switch rest[0] {
		case "-n":
			newline = false
		case "-e":
			interpret = true
		case "-E":
			interpret = false
		default:
			goto done
		}
		rest = rest[1:]
	}
done:
	out := strings.Join(rest, " ")
	if interpret {
		out = interpretEchoEscapes(out)
	}
	fmt.Print(out)
	if newline {
		fmt.Println()
	}
	return 0
}

func interpretEchoEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case 'a':
			b.WriteByte('\a')
		case 'c':
			return b.String()
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// builtinRead reads one line from stdin and assigns fields to the named
// variables, the last variable absorbing any remainder (POSIX `read`).
func builtinRead(sh *state.Shell, args []string) int {
	names := args[1:]
	if len(names) == 0 {
		names = []string{"REPLY"}
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 1
	}
	line = strings.TrimRight(line, "\n")
	ifs := sh.Options.IFS
	fields := strings.FieldsFunc(line, func(r rune) bool { return strings.ContainsRune(ifs, r) })
	for i, name := range names {
		if i == len(names)-1 && i < len(fields) {
			_ = sh.Vars.Set(name, strings.Join(fields[i:], " "))
			break
		}
		if i < len(fields) {
			_ = sh.Vars.Set(name, fields[i])
		} else {
			_ = sh.Vars.Set(name, "")
		}
	}
	return 0
}
