package executor

import (
	"strings"

	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/utils"
)

// unparse reconstructs shell source text for the common pipeline-stage
// node shapes, used to re-exec a stage as its own OS process (see
// pipeline.go). Node kinds it does not understand return "", which falls
// the caller back to in-process execution.
func unparse(n ast.Node) string {
	switch v := n.(type) {
	case *ast.SimpleCommand:
		return unparseSimpleCommand(v)
	case *ast.Pipeline:
		var parts []string
		for _, s := range v.Stages {
			u := unparse(s)
			if u == "" {
				return ""
			}
			parts = append(parts, u)
		}
		prefix := ""
		if v.Negated {
			prefix = "! "
		}
		return prefix + strings.Join(parts, " | ")
	case *ast.Subshell:
		body := unparse(v.Body)
		if body == "" {
			return ""
		}
		return "(" + body + ")"
	case *ast.BraceGroup:
		body := unparse(v.Body)
		if body == "" {
			return ""
		}
		return "{ " + body + "; }"
	case *ast.AndOr:
		var b strings.Builder
		for i, operand := range v.Operands {
			u := unparse(operand)
			if u == "" {
				return ""
			}
			if i > 0 {
				switch v.Ops[i-1] {
				case ast.OpAnd:
					b.WriteString(" && ")
				case ast.OpOr:
					b.WriteString(" || ")
				}
			}
			b.WriteString(u)
		}
		return b.String()
	default:
		return ""
	}
}

func unparseSimpleCommand(c *ast.SimpleCommand) string {
	var parts []string
	for _, a := range c.Assignments {
		if a.Elements != nil {
			// Array literals are never re-exec'd as -c text; the caller
			// falls back to in-process execution.
			return ""
		}
		lit := unparseWord(a.Value)
		if lit == "" && len(a.Value.Parts) > 0 {
			return ""
		}
		parts = append(parts, a.Name+"="+utils.ShellQuote(lit))
	}
	for _, w := range c.Words {
		lit, ok := unparseWordLiteral(w)
		if !ok {
			return ""
		}
		parts = append(parts, utils.ShellQuote(lit))
	}
	if len(c.Redirs) > 0 {
		return ""
	}
	return strings.Join(parts, " ")
}

// unparseWordLiteral returns a word's text only when it is pure literal content
// (no embedded expansions), since those would otherwise be evaluated
// twice: once here and once by the re-exec'd process.
func unparseWordLiteral(w ast.Word) (string, bool) {
	var b strings.Builder
	for _, p := range w.Parts {
		if p.Kind != ast.PartLiteral {
			return "", false
		}
		b.WriteString(p.Literal)
	}
	return b.String(), true
}

func unparseWord(w ast.Word) string {
	s, ok := unparseWordLiteral(w)
	if !ok {
		return ""
	}
	return s
}
