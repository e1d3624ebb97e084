package expand

import (
	"strconv"
	"strings"

	"github.com/opensh/opensh/ast"
	"github.com/opensh/opensh/expand/arith"
	"github.com/opensh/opensh/state"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// segment is one piece of a word's expanded text together with the
// quoting context it came from, which decides whether it is later subject
// to field splitting and pathname expansion (spec.md §4.2 phases 6-7).
type segment struct {
	text  string
	quote ast.QuoteKind
}

// expandPart evaluates one WordPart into its segment. Every successful
// expansion yields exactly one segment, possibly with empty text: an
// unquoted empty segment adds nothing to the field being built, while a
// quoted one keeps the word as a field, so `"$x"` with $x unset still
// produces one empty field.
func expandPart(part ast.WordPart, sh *state.Shell, cfg Config) ([]segment, error) {
	switch part.Kind {
	case ast.PartLiteral:
		return []segment{{text: part.Literal, quote: part.Quote}}, nil

	case ast.PartVariable:
		val, err := lookupVariable(part.Literal, sh)
		if err != nil {
			return nil, err
		}
		return []segment{{text: val, quote: part.Quote}}, nil

	case ast.PartParamExpansion:
		val, err := expandParamExpr(part.Raw, sh, part.Quote)
		if err != nil {
			return nil, err
		}
		return []segment{{text: val, quote: part.Quote}}, nil

	case ast.PartCommandSubst, ast.PartBackquote:
		if cfg.CommandSubst == nil {
			return []segment{{text: "", quote: part.Quote}}, nil
		}
		out, err := cfg.CommandSubst(part.Raw)
		if err != nil {
			return nil, newErr(ReasonCommandSubstFailed, "%v", err)
		}
		out = strings.TrimRight(out, "\n")
		return []segment{{text: out, quote: part.Quote}}, nil

	case ast.PartArithExpansion:
		v, err := arith.Eval(part.Raw, varLookup(sh), varAssign(sh))
		if err != nil {
			return nil, newErr(ReasonArithmeticError, "%v", err)
		}
		return []segment{{text: strconv.FormatInt(v, 10), quote: part.Quote}}, nil

	case ast.PartProcessSubstIn, ast.PartProcessSubstOut:
		if cfg.ProcessSubst == nil {
			return nil, newErr(ReasonUnsupportedPlatform, "process substitution not supported")
		}
		path, err := cfg.ProcessSubst(part.Raw, part.Kind == ast.PartProcessSubstOut)
		if err != nil {
			return nil, err
		}
		return []segment{{text: path, quote: ast.NoQuote}}, nil

	default:
		return []segment{{text: part.Raw, quote: part.Quote}}, nil
	}
}

func varLookup(sh *state.Shell) arith.Lookup {
	return func(name string) string {
		v, _ := lookupVariable(name, sh)
		return v
	}
}

func varAssign(sh *state.Shell) arith.Assign {
	return func(name, value string) { _ = sh.Vars.Set(name, value) }
}

// lookupVariable resolves a bare variable or special-parameter name, or an
// array reference "name[sub]" (spec.md §4.2, "Parameter expansion", "Array
// expansion rules").
func lookupVariable(name string, sh *state.Shell) (string, error) {
	if base, sub, ok := splitSubscript(name); ok {
		return lookupArrayElement(base, sub, sh)
	}
	switch name {
	case "?":
		return strconv.Itoa(sh.LastStatus), nil
	case "$":
		return strconv.Itoa(sh.ShellPID), nil
	case "!":
		if sh.LastBgPID == 0 {
			return "", nil
		}
		return strconv.Itoa(sh.LastBgPID), nil
	case "#":
		return strconv.Itoa(len(sh.ScriptArgs)), nil
	case "0":
		return sh.ScriptName, nil
	case "@", "*":
		return strings.Join(sh.ScriptArgs, " "), nil
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n >= 1 && n <= len(sh.ScriptArgs) {
			return sh.ScriptArgs[n-1], nil
		}
		return "", nil
	}
	v, ok := sh.Vars.Lookup(name)
	if !ok {
		if sh.Options.NoUnset {
			return "", newErr(ReasonUnboundVariable, "%s: unbound variable", name)
		}
		return "", nil
	}
	if v.Kind == state.IndexedArray {
		// A bare array name with no subscript expands to element 0, the
		// same as "${a[0]}" (spec.md §4.2, "Array expansion rules"); use
		// "${a[@]}"/"${a[*]}" to get every element.
		vals := v.IndexedValues()
		if len(vals) == 0 {
			return "", nil
		}
		return vals[0], nil
	}
	return v.Scalar, nil
}

// splitSubscript splits "name[sub]" into name and subscript, reporting
// whether a subscript suffix was present (spec.md §4.2, "Array expansion
// rules").
func splitSubscript(s string) (name, sub string, ok bool) {
	i := strings.IndexByte(s, '[')
	if i < 0 || !strings.HasSuffix(s, "]") {
		return s, "", false
	}
	return s[:i], s[i+1 : len(s)-1], true
}

// lookupArrayElement resolves "name[sub]": "@" and "*" both expand to
// every element joined by a space (the quoting-sensitive distinction
// between them, separate words under "@" vs one IFS-joined word under
// "*", is not preserved here — see DESIGN.md), anything else is parsed as
// a numeric index into the array.
func lookupArrayElement(name, sub string, sh *state.Shell) (string, error) {
	v, ok := sh.Vars.Lookup(name)
	if !ok {
		if sh.Options.NoUnset {
			return "", newErr(ReasonUnboundVariable, "%s: unbound variable", name)
		}
		return "", nil
	}
	if sub == "@" || sub == "*" {
		return strings.Join(v.IndexedValues(), " "), nil
	}
	idx, err := strconv.Atoi(sub)
	if err != nil {
		return "", nil
	}
	vals := v.IndexedValues()
	if idx < 0 || idx >= len(vals) {
		return "", nil
	}
	return vals[idx], nil
}

// arrayLength reports the element count of "name[@]"/"name[*]" for the
// "${#name[@]}" length form.
func arrayLength(name string, sh *state.Shell) int {
	v, ok := sh.Vars.Lookup(name)
	if !ok {
		return 0
	}
	return len(v.IndexedValues())
}

// expandParamExpr evaluates the body of a ${...} expansion: name, an
// optional operator, and its word operand (spec.md §4.2, "parameter
// expansion operators").
func expandParamExpr(body string, sh *state.Shell, q ast.QuoteKind) (string, error) {
	if strings.HasPrefix(body, "#") && len(body) > 1 && !isOperatorStart(body[1]) {
		inner := body[1:]
		if base, sub, ok := splitSubscript(inner); ok && (sub == "@" || sub == "*") {
			return strconv.Itoa(arrayLength(base, sh)), nil
		}
		v, _ := lookupVariable(inner, sh)
		return strconv.Itoa(len([]rune(v))), nil
	}

	name, op, operand, hasOp := splitParamOp(body)

	cur, lookupErr := lookupVariable(name, sh)
	isUnset := lookupErr != nil
	if !isUnset && name != "" {
		if n, err := strconv.Atoi(name); err == nil {
			isUnset = n > len(sh.ScriptArgs)
		} else if isNameByte(name[0]) {
			base, _, _ := splitSubscript(name)
			_, set := sh.Vars.Lookup(base)
			isUnset = !set
		}
	}
	isEmpty := cur == ""

	if !hasOp {
		if lookupErr != nil {
			return "", lookupErr
		}
		return cur, nil
	}

	switch op {
	case ":-":
		if isUnset || isEmpty {
			return expandOperandWord(operand, sh)
		}
		return cur, nil
	case "-":
		if isUnset {
			return expandOperandWord(operand, sh)
		}
		return cur, nil
	case ":=":
		if isUnset || isEmpty {
			val, err := expandOperandWord(operand, sh)
			if err != nil {
				return "", err
			}
			if err := sh.Vars.Set(name, val); err != nil {
				return "", err
			}
			return val, nil
		}
		return cur, nil
	case "=":
		if isUnset {
			val, err := expandOperandWord(operand, sh)
			if err != nil {
				return "", err
			}
			if err := sh.Vars.Set(name, val); err != nil {
				return "", err
			}
			return val, nil
		}
		return cur, nil
	case ":?":
		if isUnset || isEmpty {
			msg, _ := expandOperandWord(operand, sh)
			if msg == "" {
				msg = "parameter null or not set"
			}
			return "", newErr(ReasonBadSubstitution, "%s: %s", name, msg)
		}
		return cur, nil
	case "?":
		if isUnset {
			msg, _ := expandOperandWord(operand, sh)
			if msg == "" {
				msg = "parameter not set"
			}
			return "", newErr(ReasonBadSubstitution, "%s: %s", name, msg)
		}
		return cur, nil
	case ":+":
		if !isUnset && !isEmpty {
			return expandOperandWord(operand, sh)
		}
		return "", nil
	case "+":
		if !isUnset {
			return expandOperandWord(operand, sh)
		}
		return "", nil
	case "#":
		return trimPrefixPattern(cur, operand, false), nil
	case "##":
		return trimPrefixPattern(cur, operand, true), nil
	case "%":
		return trimSuffixPattern(cur, operand, false), nil
	case "%%":
		return trimSuffixPattern(cur, operand, true), nil
	case "/":
		return replacePattern(cur, operand, false), nil
	case "//":
		return replacePattern(cur, operand, true), nil
	case "^":
		return applyCase(cur, cases.Title(language.Und), false)
	case "^^":
		return applyCase(cur, cases.Upper(language.Und), true)
	case ",":
		return applyCase(cur, cases.Lower(language.Und), false)
	case ",,":
		return applyCase(cur, cases.Lower(language.Und), true)
	case ":":
		return substringExpand(cur, operand, sh)
	default:
		return cur, nil
	}
}

// substringExpand implements "${name:offset}" / "${name:offset:length}"
// (spec.md §4.2, "substring expansion"). offset and length are evaluated
// as arithmetic expressions; a negative offset counts back from the end of
// the value and a negative length counts back from the end of the value
// rather than being a count, matching bash.
func substringExpand(val, operand string, sh *state.Shell) (string, error) {
	offsetExpr, lengthExpr, hasLength := splitSubstringOperand(operand)
	offset, err := arith.Eval(offsetExpr, varLookup(sh), varAssign(sh))
	if err != nil {
		return "", newErr(ReasonArithmeticError, "%v", err)
	}
	r := []rune(val)
	n := int64(len(r))
	if offset < 0 {
		offset += n
		if offset < 0 {
			offset = 0
		}
	}
	if offset > n {
		offset = n
	}
	end := n
	if hasLength {
		length, err := arith.Eval(lengthExpr, varLookup(sh), varAssign(sh))
		if err != nil {
			return "", newErr(ReasonArithmeticError, "%v", err)
		}
		if length < 0 {
			end = n + length
		} else {
			end = offset + length
		}
		if end > n {
			end = n
		}
		if end < offset {
			end = offset
		}
	}
	return string(r[offset:end]), nil
}

// splitSubstringOperand splits "offset" or "offset:length" on the first
// top-level colon, one not nested inside a parenthesized arithmetic
// sub-expression.
func splitSubstringOperand(operand string) (offset, length string, hasLength bool) {
	depth := 0
	for i := 0; i < len(operand); i++ {
		switch operand[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 {
				return operand[:i], operand[i+1:], true
			}
		}
	}
	return operand, "", false
}

func isOperatorStart(b byte) bool {
	switch b {
	case ':', '-', '=', '?', '+', '#', '%', '/', '^', ',':
		return true
	}
	return false
}

// splitParamOp splits "name<op>operand" into its three pieces. Longest
// operators are matched first so ":-" is not mistaken for ":" followed by
// "-".
func splitParamOp(body string) (name, op, operand string, hasOp bool) {
	ops := []string{":-", ":=", ":?", ":+", "##", "%%", "//", "^^", ",,", ":", "-", "=", "?", "+", "#", "%", "/", "^", ","}
	// Name is the longest leading identifier-or-special-parameter run,
	// plus an optional "[sub]" array subscript immediately following it.
	i := 0
	if i < len(body) && (body[i] == '@' || body[i] == '*' || body[i] == '#' || body[i] == '?' || body[i] == '$' || body[i] == '!' || (body[i] >= '0' && body[i] <= '9')) {
		i++
	} else {
		for i < len(body) && isNameByte(body[i]) {
			i++
		}
	}
	if i < len(body) && body[i] == '[' {
		depth := 1
		j := i + 1
		for j < len(body) && depth > 0 {
			switch body[j] {
			case '[':
				depth++
			case ']':
				depth--
			}
			j++
		}
		i = j
	}
	name = body[:i]
	rest := body[i:]
	if rest == "" {
		return name, "", "", false
	}
	for _, cand := range ops {
		if strings.HasPrefix(rest, cand) {
			return name, cand, rest[len(cand):], true
		}
	}
	return name, "", "", false
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Text performs plain $name substitution over raw, unlexed text such as a
// heredoc body: the lexer hands the executor the heredoc's bytes verbatim,
// so expansion here cannot rely on pre-split WordParts the way ordinary
// words can (see DESIGN.md for the scope of this simplification).
func Text(raw string, sh *state.Shell) (string, error) {
	return expandOperandWord(raw, sh)
}

// expandOperandWord expands the plain-text operand of a parameter
// expansion operator. Nested expansions inside the operand (e.g.
// ${x:-$(cmd)} or ${x:-${y}}) are not re-lexed here; the lexer already flattens them into
// this raw text, so only $name-style substitution is honored, which
// covers the common case (see DESIGN.md for the scope of this
// simplification).
func expandOperandWord(operand string, sh *state.Shell) (string, error) {
	var b strings.Builder
	for i := 0; i < len(operand); i++ {
		if operand[i] == '$' && i+1 < len(operand) {
			j := i + 1
			for j < len(operand) && isNameByte(operand[j]) {
				j++
			}
			if j > i+1 {
				val, _ := lookupVariable(operand[i+1:j], sh)
				b.WriteString(val)
				i = j - 1
				continue
			}
		}
		b.WriteByte(operand[i])
	}
	return b.String(), nil
}

type caser interface {
	String(string) string
}

func applyCase(s string, c caser, all bool) (string, error) {
	if s == "" {
		return "", nil
	}
	if all {
		return c.String(s), nil
	}
	r := []rune(s)
	head := c.String(string(r[0]))
	return head + string(r[1:]), nil
}
