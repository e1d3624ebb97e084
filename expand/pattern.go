package expand

import "path/filepath"

// trimPrefixPattern implements ${name#pattern} / ${name##pattern}: the
// shortest (or, if greedy, longest) matching prefix is removed.
func trimPrefixPattern(s, pattern string, greedy bool) string {
	if pattern == "" {
		return s
	}
	if greedy {
		for i := len(s); i >= 0; i-- {
			if ok, _ := filepath.Match(pattern, s[:i]); ok {
				return s[i:]
			}
		}
		return s
	}
	for i := 0; i <= len(s); i++ {
		if ok, _ := filepath.Match(pattern, s[:i]); ok {
			return s[i:]
		}
	}
	return s
}

// trimSuffixPattern implements ${name%pattern} / ${name%%pattern}.
func trimSuffixPattern(s, pattern string, greedy bool) string {
	if pattern == "" {
		return s
	}
	if greedy {
		for i := 0; i <= len(s); i++ {
			if ok, _ := filepath.Match(pattern, s[i:]); ok {
				return s[:i]
			}
		}
		return s
	}
	for i := len(s); i >= 0; i-- {
		if ok, _ := filepath.Match(pattern, s[i:]); ok {
			return s[:i]
		}
	}
	return s
}

// replacePattern implements ${name/pattern/string} (first match) and
// ${name//pattern/string} (all matches). Pattern matching here is a plain
// substring search rather than full glob semantics, which covers the
// common literal-substring use of this operator (see DESIGN.md).
func replacePattern(s, operand string, all bool) string {
	pattern, repl := splitReplaceOperand(operand)
	if pattern == "" {
		return s
	}
	if all {
		return replaceAll(s, pattern, repl)
	}
	idx := indexOf(s, pattern)
	if idx < 0 {
		return s
	}
	return s[:idx] + repl + s[idx+len(pattern):]
}

func splitReplaceOperand(operand string) (pattern, repl string) {
	for i := 0; i < len(operand); i++ {
		if operand[i] == '/' {
			return operand[:i], operand[i+1:]
		}
	}
	return operand, ""
}

func indexOf(s, sub string) int {
	if sub == "" {
		return -1
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func replaceAll(s, sub, repl string) string {
	if sub == "" {
		return s
	}
	var out []byte
	for i := 0; i < len(s); {
		if i+len(sub) <= len(s) && s[i:i+len(sub)] == sub {
			out = append(out, repl...)
			i += len(sub)
			continue
		}
		out = append(out, s[i])
		i++
	}
	return string(out)
}
