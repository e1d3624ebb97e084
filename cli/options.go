package cli

import (
	"fmt"
	"strings"
)

// Options is the result of parsing argv (spec.md §6, SPEC_FULL.md §6.1).
type Options struct {
	Command       string // -c "commands"
	ScriptFile    string // first non-flag operand, or -s to force stdin
	ScriptArgs    []string
	Login         bool // -l
	Interactive   bool // -i, or inferred from stdin being a terminal
	XTrace        bool // -x
	ErrExit       bool // -e
	NoUnset       bool // -u
	NoRC          bool // --norc
	PosixStrict   bool // --posix
	Version       bool // --version
	ReadFromStdin bool   // -s
	DumpAliases   string // --dump-aliases=path
}

// PreprocessArgs rewrites combined short flags ("-ex") into separate ones
// ("-e", "-x") so Parse never needs to special-case clusters, matching the
// teacher's split between a rewriting pre-pass and a parser.
func PreprocessArgs(args []string) []string {
	var out []string
	for _, a := range args {
		if len(a) > 2 && a[0] == '-' && a[1] != '-' {
			isCluster := true
			for _, r := range a[1:] {
				if !isShortFlagLetter(r) {
					isCluster = false
					break
				}
			}
			if isCluster {
				for _, r := range a[1:] {
					out = append(out, "-"+string(r))
				}
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func isShortFlagLetter(r rune) bool {
	switch r {
	case 'c', 's', 'i', 'l', 'x', 'e', 'u':
		return true
	default:
		return false
	}
}

// Parse consumes a preprocessed argv into an Options struct. Unrecognized
// options return an error; the caller exits 2 (spec.md §6).
func Parse(args []string) (*Options, error) {
	opts := &Options{}
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-c":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-c: option requires an argument")
			}
			opts.Command = args[i]
		case a == "-s":
			opts.ReadFromStdin = true
		case a == "-i":
			opts.Interactive = true
		case a == "-l":
			opts.Login = true
		case a == "-x":
			opts.XTrace = true
		case a == "-e":
			opts.ErrExit = true
		case a == "-u":
			opts.NoUnset = true
		case a == "--norc":
			opts.NoRC = true
		case a == "--posix":
			opts.PosixStrict = true
		case a == "--version":
			opts.Version = true
		case strings.HasPrefix(a, "--dump-aliases="):
			opts.DumpAliases = strings.TrimPrefix(a, "--dump-aliases=")
		case a == "--":
			i++
			goto operands
		case len(a) > 1 && a[0] == '-' && a != "-":
			return nil, fmt.Errorf("opensh: %s: invalid option", a)
		default:
			goto operands
		}
	}
operands:
	if i < len(args) {
		if opts.Command == "" && !opts.ReadFromStdin {
			opts.ScriptFile = args[i]
			i++
		}
		opts.ScriptArgs = append(opts.ScriptArgs, args[i:]...)
	}
	return opts, nil
}
