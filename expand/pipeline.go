package expand

import (
	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/state"
)

// Words runs the full eight-phase expansion pipeline (spec.md §4.2) over a
// command's word list and returns the resulting argv.
func Words(words []ast.Word, sh *state.Shell, cfg Config) ([]string, error) {
	var out []string
	for _, w := range words {
		fields, err := expandOneWord(w, sh, cfg, true)
		if err != nil {
			return nil, err
		}
		out = append(out, fields...)
	}
	return out, nil
}

// Word runs brace expansion, then phases 2-5 and 8 (tilde through quote
// removal, no splitting or globbing), and returns the first resulting
// word, for a single-value context: redirection targets, case
// patterns, assignment right-hand sides, and `for`/`case` words that are
// documented to not undergo field splitting.
func Word(w ast.Word, sh *state.Shell, cfg Config) (string, error) {
	fields, err := expandOneWord(w, sh, cfg, false)
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

func expandOneWord(w ast.Word, sh *state.Shell, cfg Config, doSplitGlob bool) ([]string, error) {
	var out []string
	for _, bw := range expandBraces(w) {
		tw := expandTilde(bw, sh)

		var segs []segment
		for _, part := range tw.Parts {
			ps, err := expandPart(part, sh, cfg)
			if err != nil {
				return nil, err
			}
			segs = append(segs, ps...)
		}

		if !doSplitGlob {
			out = append(out, stripEscapeMarker(joinSegments(segs)))
			continue
		}

		ifs := sh.Options.IFS
		fields := splitFields(segs, ifs)
		globOpts := GlobOptions{NullGlob: sh.Options.NullGlob, FailGlob: sh.Options.FailGlob}
		for _, f := range fields {
			if f.split {
				g, gerr := expandGlob(f.text, globOpts)
				if gerr != nil {
					return nil, gerr
				}
				out = append(out, g...)
			} else {
				out = append(out, stripEscapeMarker(f.text))
			}
		}
	}
	return out, nil
}

func joinSegments(segs []segment) string {
	var out []byte
	for _, s := range segs {
		out = append(out, s.text...)
	}
	return string(out)
}
