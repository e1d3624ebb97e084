package executor

import (
	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/lexer"
)

// parseSource lexes and parses a chunk of shell source into a Program,
// the same pipeline main.go runs for a whole script (spec.md §4.1, §4.6).
func parseSource(src string) (*ast.Program, error) {
	return parseSourcePosix(src, false)
}

func parseSourcePosix(src string, posixStrict bool) (*ast.Program, error) {
	toks, heredocs, err := lexer.Tokenize(src, posixStrict)
	if err != nil {
		return nil, err
	}
	return ast.Parse(toks, heredocs)
}
