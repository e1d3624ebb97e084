package expand

import (
	"strings"

	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/state"
)

// expandTilde performs tilde expansion (spec.md §4.2 phase 2) on the
// leading literal part of a word: ~ and ~/rest resolve to $HOME, ~+ to
// $PWD, ~- to $OLDPWD. Other-user forms (~user) are left untouched; opensh
// has no system user directory lookup.
func expandTilde(w ast.Word, sh *state.Shell) ast.Word {
	if len(w.Parts) == 0 || w.Parts[0].Kind != ast.PartLiteral || w.Parts[0].Quote != ast.NoQuote {
		return w
	}
	lit := w.Parts[0].Literal
	if !strings.HasPrefix(lit, "~") {
		return w
	}
	end := strings.IndexByte(lit, '/')
	var tag, rest string
	if end < 0 {
		tag, rest = lit, ""
	} else {
		tag, rest = lit[:end], lit[end:]
	}

	var replacement string
	switch tag {
	case "~":
		replacement = sh.Vars.Get("HOME")
	case "~+":
		replacement = sh.Vars.Get("PWD")
	case "~-":
		replacement = sh.Vars.Get("OLDPWD")
	default:
		return w
	}
	if replacement == "" {
		return w
	}
	parts := append([]ast.WordPart{{Kind: ast.PartLiteral, Literal: replacement + rest}}, w.Parts[1:]...)
	return ast.Word{Parts: parts}
}
