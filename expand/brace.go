package expand

import (
	"strconv"
	"strings"

	"github.com/opensh/opensh/ast"
)

// expandBraces performs brace expansion (spec.md §4.2 phase 1): {a,b,c} and
// {1..5} / {a..z} sequence expressions. It operates on literal text only —
// a brace expression spanning into an embedded expansion is left alone,
// matching how real shells brace-expand lexically before touching
// parameters (see DESIGN.md for the scope of this approximation).
func expandBraces(w ast.Word) []ast.Word {
	for i, part := range w.Parts {
		if part.Kind != ast.PartLiteral {
			continue
		}
		alts, ok := splitBraceAlternatives(part.Literal)
		if !ok {
			continue
		}
		var out []ast.Word
		for _, alt := range alts {
			nw := ast.Word{Parts: append(append([]ast.WordPart{}, w.Parts[:i]...), ast.WordPart{Kind: ast.PartLiteral, Literal: alt})}
			nw.Parts = append(nw.Parts, w.Parts[i+1:]...)
			out = append(out, expandBraces(nw)...)
		}
		return out
	}
	return []ast.Word{w}
}

// splitBraceAlternatives finds the first brace expression in s and returns
// the set of strings obtained by substituting each alternative in place.
func splitBraceAlternatives(s string) ([]string, bool) {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return nil, false
	}
	depth := 0
	close_ := -1
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				close_ = i
			}
		}
		if close_ >= 0 {
			break
		}
	}
	if close_ < 0 {
		return nil, false
	}
	prefix, body, suffix := s[:open], s[open+1:close_], s[close_+1:]

	if seq, ok := splitSequence(body); ok {
		out := make([]string, len(seq))
		for i, v := range seq {
			out[i] = prefix + v + suffix
		}
		return out, true
	}

	items := splitTopLevelCommas(body)
	if len(items) < 2 {
		return nil, false
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = prefix + it + suffix
	}
	return out, true
}

func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}

// splitSequence recognizes {N..M} or {N..M..S} numeric, and {a..z} alpha.
func splitSequence(body string) ([]string, bool) {
	parts := strings.Split(body, "..")
	if len(parts) != 2 && len(parts) != 3 {
		return nil, false
	}
	step := 1
	if len(parts) == 3 {
		s, err := strconv.Atoi(parts[2])
		if err != nil || s == 0 {
			return nil, false
		}
		step = s
	}
	if n1, err1 := strconv.Atoi(parts[0]); err1 == nil {
		n2, err2 := strconv.Atoi(parts[1])
		if err2 != nil {
			return nil, false
		}
		if step < 0 {
			step = -step
		}
		var out []string
		if n1 <= n2 {
			for v := n1; v <= n2; v += step {
				out = append(out, strconv.Itoa(v))
			}
		} else {
			for v := n1; v >= n2; v -= step {
				out = append(out, strconv.Itoa(v))
			}
		}
		return out, true
	}
	if len(parts[0]) == 1 && len(parts[1]) == 1 {
		c1, c2 := parts[0][0], parts[1][0]
		var out []string
		if c1 <= c2 {
			for c := c1; c <= c2; c++ {
				out = append(out, string(rune(c)))
			}
		} else {
			for c := c1; c >= c2; c-- {
				out = append(out, string(rune(c)))
			}
		}
		return out, true
	}
	return nil, false
}
