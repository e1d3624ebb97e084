package cli

import (
	"strings"

	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/lexer"
)

// LineAccumulator joins interactive input lines into one chunk of source
// until the lexer/parser agrees the chunk is syntactically complete,
// driving PS2 continuation prompting the way a shell waits for a matching
// quote, `then`, or `)` before running anything (spec.md §4.1 "Error
// model", SPEC_FULL.md §6.5).
type LineAccumulator struct {
	lines []string
}

// NewLineAccumulator returns an empty accumulator.
func NewLineAccumulator() *LineAccumulator {
	return &LineAccumulator{}
}

// Add appends one line of raw input (without its trailing newline).
func (la *LineAccumulator) Add(line string) {
	la.lines = append(la.lines, line)
}

// Source joins the accumulated lines back into one chunk of source text.
func (la *LineAccumulator) Source() string {
	return strings.Join(la.lines, "\n")
}

// Pending reports whether any lines have been accumulated without being
// reset, meaning the next prompt should be PS2 rather than PS1.
func (la *LineAccumulator) Pending() bool {
	return len(la.lines) > 0
}

// Reset clears the accumulator for the next command.
func (la *LineAccumulator) Reset() {
	la.lines = nil
}

// needsContinuation reports whether src is an incomplete shell chunk: an
// unterminated quote/heredoc/nesting the lexer flags directly, or a parse
// failure whose only problem is running out of tokens before a construct
// closed (an unexpected EOF, recognizable because the EOF token's lexeme
// is empty).
func needsContinuation(src string) bool {
	toks, heredocs, err := lexer.Tokenize(src, false)
	if err != nil {
		if lexErr, ok := err.(*lexer.Error); ok {
			return lexErr.Continuation
		}
		return false
	}
	if _, err := ast.Parse(toks, heredocs); err != nil {
		if parseErr, ok := err.(*ast.ParseError); ok {
			return strings.Contains(parseErr.Message, `got ""`)
		}
	}
	return false
}
