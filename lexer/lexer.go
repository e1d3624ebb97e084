// Package lexer implements the context-sensitive tokenizer described in
// spec.md §4.1: a priority-ordered recognizer registry driving a state
// machine over quoting, nesting, and command-position rules, with nested
// sub-parsers for expansions and heredoc body collection.
package lexer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/opensh/opensh/token"
)

// recognizer is one entry in the priority-ordered registry (spec.md §4.1,
// "Recognizer registry").
type recognizer struct {
	name     string
	priority int
	match    func(l *Lexer) (token.Token, bool, error)
}

// Lexer tokenizes a single logical source text into a token stream plus
// any heredoc bodies it collected along the way.
type Lexer struct {
	src          string
	runes        []rune
	pos          int
	line, col    int
	state        *State
	recognizers  []recognizer
	out          []token.Token
	enableProcSu bool // process substitution <( >( recognizer enabled
	resolved     int  // count of PendingHeredoc entries whose body has been collected
}

// New constructs a Lexer over src. posixStrict disables non-POSIX
// recognizers such as process substitution at the caller's discretion.
func New(src string, posixStrict bool) *Lexer {
	l := &Lexer{
		src:          src,
		runes:        []rune(src),
		line:         1,
		col:          1,
		state:        newState(posixStrict),
		enableProcSu: !posixStrict,
	}
	l.recognizers = []recognizer{
		{"operator", 150, l.recognizeOperator},
		{"whitespace", 120, l.recognizeWhitespace},
		{"comment", 110, l.recognizeComment},
		{"procsubst", 100, l.recognizeProcessSubst},
		{"word", 70, l.recognizeWord},
	}
	sort.SliceStable(l.recognizers, func(i, j int) bool {
		return l.recognizers[i].priority > l.recognizers[j].priority
	})
	return l
}

// Tokenize runs the full lexical pass over src, including the
// keyword-normalization post-pass and heredoc-body collection, and returns
// the resulting tokens plus the heredoc bodies keyed in the order their
// introducing operators were seen.
func Tokenize(src string, posixStrict bool) ([]token.Token, []*HeredocSpec, error) {
	l := New(src, posixStrict)
	if err := l.run(); err != nil {
		return nil, nil, err
	}
	normalizeKeywords(l.out)
	return l.out, l.state.PendingHeredoc, nil
}

func (l *Lexer) run() error {
	for {
		if l.atEOF() {
			if err := l.consumePendingHeredocBodies(); err != nil {
				return err
			}
			l.emit(token.Token{Kind: token.EOF, Start: l.posAt(l.pos), End: l.posAt(l.pos)})
			return nil
		}
		matched := false
		for _, rec := range l.recognizers {
			start := l.pos
			tok, ok, err := rec.match(l)
			if err != nil {
				return err
			}
			if ok {
				matched = true
				if tok.Kind != token.ILLEGAL || tok.Lexeme != "" {
					l.linkHeredocDelimiter(tok)
					l.out = append(l.out, tok)
					if tok.Kind == token.DLESS || tok.Kind == token.DLESSDASH {
						tok2 := &l.out[len(l.out)-1]
						tok2.HeredocIndex = len(l.state.PendingHeredoc)
						l.state.PendingHeredoc = append(l.state.PendingHeredoc, &HeredocSpec{
							StripTabs: tok.Kind == token.DLESSDASH,
						})
					}
					if tok.Kind == token.NEWLINE {
						if err := l.consumePendingHeredocBodies(); err != nil {
							return err
						}
					}
				}
				l.updateCommandPosition(tok)
				break
			}
			l.pos = start
		}
		if !matched {
			// Fallback: consume one rune as a literal WORD to guarantee progress.
			start := l.posAt(l.pos)
			r, _ := l.peek()
			l.advance()
			t := token.Token{Kind: token.WORD, Lexeme: string(r), Start: start, End: l.posAt(l.pos)}
			l.out = append(l.out, t)
			l.state.CommandPos = false
		}
	}
}

// linkHeredocDelimiter fills in the delimiter word and quoted-ness of the
// most recently opened, not-yet-linked heredoc spec when tok is the WORD
// immediately following its introducing << or <<- operator.
func (l *Lexer) linkHeredocDelimiter(tok token.Token) {
	if tok.Kind != token.WORD || len(l.out) == 0 {
		return
	}
	prev := l.out[len(l.out)-1]
	if prev.Kind != token.DLESS && prev.Kind != token.DLESSDASH {
		return
	}
	if prev.HeredocIndex < 0 || prev.HeredocIndex >= len(l.state.PendingHeredoc) {
		return
	}
	spec := l.state.PendingHeredoc[prev.HeredocIndex]
	if spec.Delimiter != "" {
		return
	}
	spec.Delimiter = tok.Lexeme
	spec.Quoted = tok.Quote != token.NoQuote
}

func (l *Lexer) updateCommandPosition(tok token.Token) {
	switch tok.Kind {
	case token.SEMI, token.NEWLINE, token.AMP, token.AND_IF, token.OR_IF,
		token.PIPE, token.PIPE_AMP, token.LPAREN, token.LBRACE, token.DSEMI,
		token.DSEMI_AMP, token.DSEMI_AMP2:
		l.state.CommandPos = true
	case token.WORD, token.KEYWORD:
		l.state.CommandPos = token.IsKeyword(tok.Lexeme) &&
			(tok.Lexeme == "then" || tok.Lexeme == "else" || tok.Lexeme == "do" ||
				tok.Lexeme == "elif" || tok.Lexeme == "!" || tok.Lexeme == "in")
	}
}

// --- low-level cursor helpers ---

func (l *Lexer) atEOF() bool { return l.pos >= len(l.runes) }

func (l *Lexer) peek() (rune, bool) {
	if l.atEOF() {
		return 0, false
	}
	return l.runes[l.pos], true
}

func (l *Lexer) peekAt(offset int) rune {
	idx := l.pos + offset
	if idx < 0 || idx >= len(l.runes) {
		return 0
	}
	return l.runes[idx]
}

func (l *Lexer) advance() {
	if l.atEOF() {
		return
	}
	if l.runes[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) posAt(offset int) token.Pos {
	// Approximation: recompute line/col is expensive; for our purposes the
	// running line/col at time of call is accurate since callers invoke
	// posAt either at the current position or at a previously-saved start
	// recorded via the same running counters.
	return token.Pos{Offset: offset, Line: l.line, Col: l.col}
}

func (l *Lexer) emit(t token.Token) { l.out = append(l.out, t) }

// --- recognizers ---

var operatorsByLen = [][]string{
	nil,
	{";", "&", "|", "(", ")", "{", "}", "<", ">"},
	{"&&", "||", ";;", "<<", ">>", "<&", ">&", "<>", ">|", "|&"},
	{"<<-", ";;&"},
	{";&"}, // handled specially below (len 2 but must win over ';;' no — kept distinct)
}

func (l *Lexer) recognizeOperator(lx *Lexer) (token.Token, bool, error) {
	start := lx.posAt(lx.pos)
	// Try longest operators first.
	try := func(s string) bool {
		for i, r := range []rune(s) {
			if lx.peekAt(i) != r {
				return false
			}
		}
		return true
	}
	kindFor := map[string]token.Kind{
		"<<-": token.DLESSDASH, ";;&": token.DSEMI_AMP2,
		"&&": token.AND_IF, "||": token.OR_IF, ";;": token.DSEMI,
		"<<": token.DLESS, ">>": token.DGREAT, "<&": token.LESSAND,
		">&": token.GREATAND, "<>": token.LESSGREAT, ">|": token.CLOBBER,
		"|&": token.PIPE_AMP, ";&": token.DSEMI_AMP,
		";": token.SEMI, "&": token.AMP, "|": token.PIPE,
		"(": token.LPAREN, ")": token.RPAREN, "{": token.LBRACE, "}": token.RBRACE,
		"<": token.LESS, ">": token.GREAT,
	}
	candidates := []string{"<<-", ";;&", "&&", "||", ";;", "<<", ">>", "<&", ">&", "<>", ">|", "|&", ";&",
		";", "&", "|", "(", ")", "{", "}", "<", ">"}
	for _, cand := range candidates {
		if try(cand) {
			for range cand {
				lx.advance()
			}
			t := token.Token{Kind: kindFor[cand], Lexeme: cand, Start: start, End: lx.posAt(lx.pos)}
			if cand == "<<" || cand == "<<-" {
				t.HeredocIndex = len(lx.state.PendingHeredoc)
			}
			return t, true, nil
		}
	}
	r, ok := lx.peek()
	if ok && r == '\n' {
		lx.advance()
		return token.Token{Kind: token.NEWLINE, Lexeme: "\n", Start: start, End: lx.posAt(lx.pos)}, true, nil
	}
	return token.Token{}, false, nil
}

func (l *Lexer) recognizeWhitespace(lx *Lexer) (token.Token, bool, error) {
	r, ok := lx.peek()
	if !ok || (r != ' ' && r != '\t') {
		return token.Token{}, false, nil
	}
	for {
		r, ok := lx.peek()
		if !ok || (r != ' ' && r != '\t') {
			break
		}
		lx.advance()
	}
	// Whitespace produces no token; signal a non-error "handled" match with
	// an ILLEGAL/empty token that run() will discard.
	return token.Token{}, true, nil
}

func (l *Lexer) recognizeComment(lx *Lexer) (token.Token, bool, error) {
	r, ok := lx.peek()
	if !ok || r != '#' {
		return token.Token{}, false, nil
	}
	// Only a comment at word start (start of input or after whitespace/operator).
	if len(lx.out) > 0 {
		prev := lx.out[len(lx.out)-1]
		if prev.Kind == token.WORD && lx.pos > 0 && lx.runes[lx.pos-1] != ' ' && lx.runes[lx.pos-1] != '\t' {
			return token.Token{}, false, nil
		}
	}
	for {
		r, ok := lx.peek()
		if !ok || r == '\n' {
			break
		}
		lx.advance()
	}
	return token.Token{}, true, nil
}

func (l *Lexer) recognizeProcessSubst(lx *Lexer) (token.Token, bool, error) {
	if !lx.enableProcSu {
		return token.Token{}, false, nil
	}
	r, ok := lx.peek()
	if !ok || (r != '<' && r != '>') || lx.peekAt(1) != '(' {
		return token.Token{}, false, nil
	}
	start := lx.posAt(lx.pos)
	dir := r
	lx.advance() // < or >
	raw, err := lx.readCommandSubst()
	if err != nil {
		return token.Token{}, false, err
	}
	lit := string(dir) + "(" + raw
	return token.Token{
		Kind:   token.WORD,
		Lexeme: lit,
		Start:  start,
		End:    lx.posAt(lx.pos),
		Parts: []token.Part{{
			Kind:    token.PartCommandSubst,
			Raw:     raw,         // readCommandSubst already stops before ')'
			Literal: string(dir), // '<' or '>' direction marker
		}},
	}, true, nil
}

// recognizeWord is the fallback recognizer: it assembles a WORD token by
// appending token parts until a delimiter is reached (spec.md §4.1).
func (l *Lexer) recognizeWord(lx *Lexer) (token.Token, bool, error) {
	r, ok := lx.peek()
	if !ok || isWordDelimiter(r) {
		return token.Token{}, false, nil
	}
	start := lx.posAt(lx.pos)
	var parts []token.Part
	var lit strings.Builder
	quote := token.NoQuote
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, token.Part{Kind: token.PartLiteral, Literal: lit.String()})
			lit.Reset()
		}
	}

	// Array-assignment / plain-assignment recognition at command position:
	// NAME= or NAME[...]= immediately, no intervening space (spec.md §4.1).
	assignName := ""
	if lx.state.CommandPos {
		assignName = lx.tryAssignmentPrefix()
	}
	if assignName != "" {
		lx.consumeAssignmentPrefix(&lit)
		if r, ok := lx.peek(); ok && r == '(' {
			lx.advance()
			elems, err := lx.readArrayElements()
			if err != nil {
				return token.Token{}, false, err
			}
			return token.Token{
				Kind:     token.ASSIGN_ARRAY,
				Lexeme:   lit.String() + "(...)",
				Start:    start,
				End:      lx.posAt(lx.pos),
				Elements: elems,
			}, true, nil
		}
	}

	for {
		r, ok := lx.peek()
		if !ok || isWordDelimiter(r) {
			break
		}
		switch r {
		case '\'':
			lx.advance()
			s, err := lx.readSingleQuote()
			if err != nil {
				return token.Token{}, false, err
			}
			flush()
			parts = append(parts, token.Part{Kind: token.PartLiteral, Literal: s, Quote: token.SingleQuote})
			if quote == token.NoQuote {
				quote = token.SingleQuote
			}
		case '"':
			lx.advance()
			dqParts, err := lx.readDoubleQuote()
			if err != nil {
				return token.Token{}, false, err
			}
			flush()
			parts = append(parts, dqParts...)
			if quote == token.NoQuote {
				quote = token.DoubleQuote
			}
		case '$':
			if lx.peekAt(1) == '\'' {
				lx.advance()
				lx.advance()
				s, err := lx.readAnsiC()
				if err != nil {
					return token.Token{}, false, err
				}
				flush()
				parts = append(parts, token.Part{Kind: token.PartLiteral, Literal: s, Quote: token.AnsiCQuote})
				if quote == token.NoQuote {
					quote = token.AnsiCQuote
				}
				continue
			}
			flush()
			part, err := lx.readExpansionPart(token.NoQuote)
			if err != nil {
				return token.Token{}, false, err
			}
			parts = append(parts, part)
		case '`':
			flush()
			lx.advance()
			raw, err := lx.readBackquote()
			if err != nil {
				return token.Token{}, false, err
			}
			parts = append(parts, token.Part{Kind: token.PartBackquote, Raw: raw})
		case '\\':
			lx.advance()
			nr, ok := lx.peek()
			if ok && nr != '\n' {
				lit.WriteRune(token.EscapeMarker)
				lit.WriteRune(nr)
				lx.advance()
			} else if ok {
				lx.advance() // line continuation
			}
		case '~':
			lit.WriteRune(r)
			lx.advance()
		default:
			lit.WriteRune(r)
			lx.advance()
		}
	}
	flush()
	lit2 := lx.literalOf(parts)
	tok := token.Token{Kind: token.WORD, Lexeme: lit2, Start: start, End: lx.posAt(lx.pos), Quote: quote, Parts: parts}
	if assignName != "" {
		tok.Kind = token.ASSIGN
	}
	return tok, true, nil
}

// tryAssignmentPrefix recognizes NAME=... or NAME[sub]=... at the current
// position without consuming anything if it does not match, returning the
// assignment target name on success (spec.md §4.1, "Array-assignment
// recognition").
func (l *Lexer) tryAssignmentPrefix() string {
	save := l.pos
	if r, ok := l.peek(); !ok || !isVarStart(r) {
		return ""
	}
	start := l.pos
	for {
		r, ok := l.peek()
		if !ok || !isVarCont(r) {
			break
		}
		l.advance()
	}
	name := string(l.runes[start:l.pos])
	if r, ok := l.peek(); ok && r == '[' {
		l.advance()
		depth := 1
		for depth > 0 {
			r, ok := l.peek()
			if !ok {
				l.pos = save
				return ""
			}
			if r == '[' {
				depth++
			} else if r == ']' {
				depth--
			}
			l.advance()
		}
	}
	if r, ok := l.peek(); !ok || r != '=' {
		l.pos = save
		return ""
	}
	l.pos = save
	return name
}

// consumeAssignmentPrefix re-walks and consumes the "NAME=" or "NAME[sub]="
// prefix that tryAssignmentPrefix already confirmed is present, writing it
// into lit so the resulting token's Lexeme still carries the full text.
func (l *Lexer) consumeAssignmentPrefix(lit *strings.Builder) {
	for {
		r, ok := l.peek()
		if !ok || !isVarCont(r) {
			break
		}
		lit.WriteRune(r)
		l.advance()
	}
	if r, ok := l.peek(); ok && r == '[' {
		depth := 0
		for {
			r, ok := l.peek()
			if !ok {
				break
			}
			lit.WriteRune(r)
			if r == '[' {
				depth++
			} else if r == ']' {
				depth--
			}
			l.advance()
			if depth == 0 {
				break
			}
		}
	}
	if r, ok := l.peek(); ok && r == '=' {
		lit.WriteRune(r)
		l.advance()
	}
}

// readArrayElements parses the space/newline separated element words of an
// indexed-array literal "(one two three)" following a NAME= assignment
// prefix, consuming up to and including the closing ')' (spec.md §4.1,
// "Array-assignment recognition"; spec.md §8 array literal scenario).
func (l *Lexer) readArrayElements() ([]token.Word, error) {
	var elems []token.Word
	for {
		for {
			r, ok := l.peek()
			if ok && (r == ' ' || r == '\t' || r == '\n') {
				l.advance()
				continue
			}
			if ok && r == '#' {
				for {
					r, ok := l.peek()
					if !ok || r == '\n' {
						break
					}
					l.advance()
				}
				continue
			}
			break
		}
		r, ok := l.peek()
		if !ok {
			return elems, nil // unterminated; the parser reports the error
		}
		if r == ')' {
			l.advance()
			return elems, nil
		}
		parts, err := l.readArrayElementWord()
		if err != nil {
			return nil, err
		}
		if len(parts) > 0 {
			elems = append(elems, token.Word(parts))
		}
	}
}

// readArrayElementWord reads one element of an array literal, supporting
// the same quoting and expansion forms as an ordinary word.
func (l *Lexer) readArrayElementWord() ([]token.Part, error) {
	var parts []token.Part
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, token.Part{Kind: token.PartLiteral, Literal: lit.String()})
			lit.Reset()
		}
	}
	for {
		r, ok := l.peek()
		if !ok || r == ' ' || r == '\t' || r == '\n' || r == ')' {
			break
		}
		switch r {
		case '\'':
			l.advance()
			s, err := l.readSingleQuote()
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, token.Part{Kind: token.PartLiteral, Literal: s, Quote: token.SingleQuote})
		case '"':
			l.advance()
			dqParts, err := l.readDoubleQuote()
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, dqParts...)
		case '$':
			if l.peekAt(1) == '\'' {
				l.advance()
				l.advance()
				s, err := l.readAnsiC()
				if err != nil {
					return nil, err
				}
				flush()
				parts = append(parts, token.Part{Kind: token.PartLiteral, Literal: s, Quote: token.AnsiCQuote})
				continue
			}
			flush()
			part, err := l.readExpansionPart(token.NoQuote)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		case '`':
			flush()
			l.advance()
			raw, err := l.readBackquote()
			if err != nil {
				return nil, err
			}
			parts = append(parts, token.Part{Kind: token.PartBackquote, Raw: raw})
		case '\\':
			l.advance()
			nr, ok := l.peek()
			if ok && nr != '\n' {
				lit.WriteRune(token.EscapeMarker)
				lit.WriteRune(nr)
				l.advance()
			} else if ok {
				l.advance()
			}
		default:
			lit.WriteRune(r)
			l.advance()
		}
	}
	flush()
	return parts, nil
}

func (l *Lexer) literalOf(parts []token.Part) string {
	var b strings.Builder
	for _, p := range parts {
		switch p.Kind {
		case token.PartLiteral:
			b.WriteString(p.Literal)
		case token.PartVariable:
			b.WriteString("$" + p.Literal)
		case token.PartParamExpansion:
			b.WriteString("${" + p.Raw + "}")
		case token.PartCommandSubst:
			b.WriteString("$(" + p.Raw + ")")
		case token.PartArithExpansion:
			b.WriteString("$((" + p.Raw + "))")
		case token.PartBackquote:
			b.WriteString("`" + p.Raw + "`")
		}
	}
	return b.String()
}

func isWordDelimiter(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ';', '&', '|', '(', ')', '<', '>':
		return true
	default:
		return false
	}
}

// normalizeKeywords rewrites WORD tokens to KEYWORD when they sit at
// command position (spec.md §4.1, "Keyword normalization").
func normalizeKeywords(toks []token.Token) {
	atCommandPos := true
	for i := range toks {
		t := &toks[i]
		if t.Kind == token.WORD && atCommandPos && token.IsKeyword(t.Lexeme) {
			t.Kind = token.KEYWORD
		}
		switch t.Kind {
		case token.SEMI, token.NEWLINE, token.AMP, token.AND_IF, token.OR_IF,
			token.PIPE, token.PIPE_AMP, token.LPAREN, token.LBRACE, token.DSEMI,
			token.DSEMI_AMP, token.DSEMI_AMP2:
			atCommandPos = true
		case token.KEYWORD:
			atCommandPos = t.Lexeme == "then" || t.Lexeme == "else" || t.Lexeme == "do" ||
				t.Lexeme == "elif" || t.Lexeme == "!" || t.Lexeme == "in"
		default:
			atCommandPos = false
		}
	}
}
