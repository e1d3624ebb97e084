package ast

import (
	"fmt"

	"github.com/opensh/opensh/lexer"
	"github.com/opensh/opensh/token"
)

// ParseError is returned for malformed input (spec.md §7.1, "Syntax errors").
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// parser is a small recursive-descent parser over the lexer's token stream.
// It is intentionally not a full bash grammar: spec.md treats the parser
// grammar as an external collaborator and specifies only the AST shape the
// executor consumes. This implementation exists so the module is runnable
// end to end.
type parser struct {
	toks     []token.Token
	heredocs []*lexer.HeredocSpec
	pos      int
}

// Parse converts a token stream (and its collected heredoc bodies) into a
// Program.
func Parse(toks []token.Token, heredocs []*lexer.HeredocSpec) (*Program, error) {
	p := &parser{toks: toks, heredocs: heredocs}
	var lists []*AndOr
	p.skipSeparators()
	for !p.atEnd() {
		ao, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		if ao != nil {
			lists = append(lists, ao)
		}
		if p.atEnd() {
			break
		}
		if p.cur().Kind == token.AMP {
			if len(lists) > 0 {
				lists[len(lists)-1].Background = true
			}
			p.advance()
		}
		p.skipSeparators()
	}
	return &Program{Lists: lists}, nil
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekKind(off int) token.Kind {
	idx := p.pos + off
	if idx >= len(p.toks) {
		return token.EOF
	}
	return p.toks[idx].Kind
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) atEnd() bool { return p.cur().Kind == token.EOF }

func (p *parser) skipSeparators() {
	for p.cur().Kind == token.NEWLINE || p.cur().Kind == token.SEMI {
		p.advance()
	}
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &ParseError{Pos: p.cur().Start, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(k token.Kind, what string) (token.Token, error) {
	if p.cur().Kind != k {
		return token.Token{}, p.errf("expected %s, got %q", what, p.cur().Lexeme)
	}
	return p.advance(), nil
}

// parseAndOr parses one &&/|| chain, stopping before a trailing & or list
// separator.
func (p *parser) parseAndOr() (*AndOr, error) {
	first, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}
	ao := &AndOr{Operands: []Node{first}}
	for {
		switch p.cur().Kind {
		case token.AND_IF:
			p.advance()
			p.skipSeparators()
			next, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}
			ao.Operands = append(ao.Operands, next)
			ao.Ops = append(ao.Ops, OpAnd)
		case token.OR_IF:
			p.advance()
			p.skipSeparators()
			next, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}
			ao.Operands = append(ao.Operands, next)
			ao.Ops = append(ao.Ops, OpOr)
		default:
			return ao, nil
		}
	}
}

func (p *parser) parsePipeline() (Node, error) {
	negated := false
	if p.cur().Kind == token.KEYWORD && p.cur().Lexeme == "!" {
		negated = true
		p.advance()
	}
	first, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	if first == nil {
		if negated {
			return nil, p.errf("expected command after !")
		}
		return nil, nil
	}
	stages := []Node{first}
	for p.cur().Kind == token.PIPE || p.cur().Kind == token.PIPE_AMP {
		p.advance()
		p.skipSeparators()
		next, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		stages = append(stages, next)
	}
	if len(stages) == 1 && !negated {
		return stages[0], nil
	}
	return &Pipeline{Stages: stages, Negated: negated}, nil
}

// parseCommand dispatches to a compound command handler or falls back to a
// simple command.
func (p *parser) parseCommand() (Node, error) {
	if p.cur().Kind == token.KEYWORD {
		switch p.cur().Lexeme {
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhileUntil(false)
		case "until":
			return p.parseWhileUntil(true)
		case "for":
			return p.parseFor()
		case "case":
			return p.parseCase()
		case "function":
			return p.parseFunction()
		}
	}
	if p.cur().Kind == token.WORD && p.peekKind(1) == token.LPAREN && isNameWord(p.cur()) {
		return p.parseFunctionShorthand()
	}
	if p.cur().Kind == token.LPAREN {
		return p.parseSubshell()
	}
	if p.cur().Kind == token.LBRACE {
		return p.parseBraceGroup()
	}
	return p.parseSimpleCommand()
}

func isNameWord(t token.Token) bool {
	if t.Kind != token.WORD || len(t.Lexeme) == 0 {
		return false
	}
	for i, r := range t.Lexeme {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func (p *parser) parseList() (Node, error) {
	p.skipSeparators()
	var lists []*AndOr
	for {
		if p.isBlockTerminator() {
			break
		}
		ao, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		if ao == nil {
			break
		}
		if p.cur().Kind == token.AMP {
			ao.Background = true
			p.advance()
		}
		lists = append(lists, ao)
		p.skipSeparators()
	}
	return &Program{Lists: lists}, nil
}

func (p *parser) isBlockTerminator() bool {
	if p.cur().Kind == token.EOF || p.cur().Kind == token.RPAREN || p.cur().Kind == token.RBRACE {
		return true
	}
	if p.cur().Kind != token.KEYWORD {
		return false
	}
	switch p.cur().Lexeme {
	case "then", "else", "elif", "fi", "do", "done", "esac":
		return true
	}
	return false
}

func (p *parser) parseIf() (Node, error) {
	p.advance() // if
	cond, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	thenBody, err := p.parseList()
	if err != nil {
		return nil, err
	}
	node := &If{Cond: cond, Then: thenBody}
	cur := node
	for p.cur().Kind == token.KEYWORD && p.cur().Lexeme == "elif" {
		p.advance()
		c, err := p.parseList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		t, err := p.parseList()
		if err != nil {
			return nil, err
		}
		cur.Elifs = append(cur.Elifs, ElifClause{Cond: c, Then: t})
	}
	if p.cur().Kind == token.KEYWORD && p.cur().Lexeme == "else" {
		p.advance()
		e, err := p.parseList()
		if err != nil {
			return nil, err
		}
		node.Else = e
	}
	if _, err := p.expectKeyword("fi"); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseWhileUntil(until bool) (Node, error) {
	p.advance()
	cond, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("done"); err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: body, Until: until}, nil
}

func (p *parser) parseFor() (Node, error) {
	p.advance() // for
	name, err := p.expect(token.WORD, "loop variable")
	if err != nil {
		return nil, err
	}
	f := &For{Var: name.Lexeme}
	p.skipSeparators()
	if p.cur().Kind == token.KEYWORD && p.cur().Lexeme == "in" {
		p.advance()
		for p.cur().Kind == token.WORD || p.cur().Kind == token.ASSIGN {
			f.Words = append(f.Words, wordFromToken(p.advance()))
		}
	}
	if p.cur().Kind == token.SEMI || p.cur().Kind == token.NEWLINE {
		p.skipSeparators()
	}
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("done"); err != nil {
		return nil, err
	}
	f.Body = body
	return f, nil
}

func (p *parser) parseCase() (Node, error) {
	p.advance() // case
	w, err := p.expect(token.WORD, "case word")
	if err != nil {
		return nil, err
	}
	c := &Case{Word: wordFromToken(w)}
	p.skipSeparators()
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	for !(p.cur().Kind == token.KEYWORD && p.cur().Lexeme == "esac") {
		if p.cur().Kind == token.LPAREN {
			p.advance()
		}
		item := CaseItem{}
		for {
			pw, err := p.expect(token.WORD, "case pattern")
			if err != nil {
				return nil, err
			}
			item.Patterns = append(item.Patterns, wordFromToken(pw))
			if p.cur().Kind == token.PIPE {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN, ")"); err != nil {
			return nil, err
		}
		p.skipSeparators()
		body, err := p.parseCaseBody()
		if err != nil {
			return nil, err
		}
		item.Body = body
		switch p.cur().Kind {
		case token.DSEMI:
			p.advance()
		case token.DSEMI_AMP:
			item.Fallthru = true
			p.advance()
		case token.DSEMI_AMP2:
			item.TestNext = true
			p.advance()
		}
		p.skipSeparators()
		c.Items = append(c.Items, item)
	}
	if _, err := p.expectKeyword("esac"); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *parser) parseCaseBody() (Node, error) {
	var lists []*AndOr
	for {
		if p.cur().Kind == token.DSEMI || p.cur().Kind == token.DSEMI_AMP ||
			p.cur().Kind == token.DSEMI_AMP2 ||
			(p.cur().Kind == token.KEYWORD && p.cur().Lexeme == "esac") {
			break
		}
		ao, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		if ao == nil {
			break
		}
		lists = append(lists, ao)
		p.skipSeparators()
	}
	return &Program{Lists: lists}, nil
}

func (p *parser) parseFunction() (Node, error) {
	p.advance() // function
	name, err := p.expect(token.WORD, "function name")
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == token.LPAREN {
		p.advance()
		if _, err := p.expect(token.RPAREN, ")"); err != nil {
			return nil, err
		}
	}
	p.skipSeparators()
	body, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &Function{Name: name.Lexeme, Body: body}, nil
}

func (p *parser) parseFunctionShorthand() (Node, error) {
	name := p.advance()
	p.advance() // (
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &Function{Name: name.Lexeme, Body: body}, nil
}

func (p *parser) parseSubshell() (Node, error) {
	p.advance() // (
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ")"); err != nil {
		return nil, err
	}
	redirs, err := p.parseRedirections()
	if err != nil {
		return nil, err
	}
	return &Subshell{Body: body, Redirs: redirs}, nil
}

func (p *parser) parseBraceGroup() (Node, error) {
	p.advance() // {
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "}"); err != nil {
		return nil, err
	}
	redirs, err := p.parseRedirections()
	if err != nil {
		return nil, err
	}
	return &BraceGroup{Body: body, Redirs: redirs}, nil
}

func (p *parser) expectKeyword(kw string) (token.Token, error) {
	if p.cur().Kind != token.KEYWORD || p.cur().Lexeme != kw {
		return token.Token{}, p.errf("expected %q, got %q", kw, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *parser) parseSimpleCommand() (Node, error) {
	cmd := &SimpleCommand{}
	for p.cur().Kind == token.ASSIGN || p.cur().Kind == token.ASSIGN_ARRAY {
		tok := p.advance()
		var a Assignment
		var err error
		if tok.Kind == token.ASSIGN_ARRAY {
			a = parseArrayAssignmentWord(tok)
		} else {
			a, err = p.parseAssignmentWord(tok)
			if err != nil {
				return nil, err
			}
		}
		cmd.Assignments = append(cmd.Assignments, a)
	}
	for {
		switch p.cur().Kind {
		case token.WORD:
			cmd.Words = append(cmd.Words, wordFromToken(p.advance()))
		case token.LESS, token.GREAT, token.DGREAT, token.DLESS, token.DLESSDASH,
			token.LESSAND, token.GREATAND, token.LESSGREAT, token.CLOBBER:
			r, err := p.parseOneRedirection()
			if err != nil {
				return nil, err
			}
			cmd.Redirs = append(cmd.Redirs, r)
		default:
			if len(cmd.Words) == 0 && len(cmd.Assignments) == 0 && len(cmd.Redirs) == 0 {
				return nil, nil
			}
			return cmd, nil
		}
	}
}

func (p *parser) parseAssignmentWord(t token.Token) (Assignment, error) {
	// t.Lexeme is the fully-assembled word "NAME=value" or "NAME[idx]=value";
	// the lexer only validated the prefix, so split here.
	name, idx, value := splitAssignment(t)
	return Assignment{Name: name, Index: idx, Value: value}, nil
}

// parseArrayAssignmentWord builds the Assignment for an ASSIGN_ARRAY token
// ("NAME=(one two three)"); the lexer already collected the element words
// into t.Elements, so only the name needs splitting off of t.Lexeme.
func parseArrayAssignmentWord(t token.Token) Assignment {
	name := arrayAssignmentName(t.Lexeme)
	elems := make([]Word, 0, len(t.Elements))
	for _, e := range t.Elements {
		w := Word{}
		for _, p := range e {
			w.Parts = append(w.Parts, WordPart{
				Kind:    WordPartKind(p.Kind),
				Literal: p.Literal,
				Raw:     p.Raw,
				Quote:   QuoteKind(p.Quote),
			})
		}
		elems = append(elems, w)
	}
	return Assignment{Name: name, Elements: elems}
}

func arrayAssignmentName(lex string) string {
	i := 0
	for i < len(lex) && (lex[i] == '_' || (lex[i] >= 'a' && lex[i] <= 'z') || (lex[i] >= 'A' && lex[i] <= 'Z') || (lex[i] >= '0' && lex[i] <= '9')) {
		i++
	}
	return lex[:i]
}

func (p *parser) parseRedirections() ([]Redirection, error) {
	var redirs []Redirection
	for {
		switch p.cur().Kind {
		case token.LESS, token.GREAT, token.DGREAT, token.DLESS, token.DLESSDASH,
			token.LESSAND, token.GREATAND, token.LESSGREAT, token.CLOBBER:
			r, err := p.parseOneRedirection()
			if err != nil {
				return nil, err
			}
			redirs = append(redirs, r)
		default:
			return redirs, nil
		}
	}
}

func (p *parser) parseOneRedirection() (Redirection, error) {
	op := p.advance()
	r := Redirection{FD: -1}
	switch op.Kind {
	case token.LESS:
		r.Kind = RedirInput
	case token.GREAT:
		r.Kind = RedirOutput
	case token.DGREAT:
		r.Kind = RedirOutputAppend
	case token.CLOBBER:
		r.Kind = RedirOutputClobber
	case token.LESSGREAT:
		r.Kind = RedirInputOutput
	case token.LESSAND:
		r.Kind = RedirDupIn
	case token.GREATAND:
		r.Kind = RedirDupOut
	case token.DLESS:
		r.Kind = RedirHeredoc
	case token.DLESSDASH:
		r.Kind = RedirHeredocStrip
	}
	if op.Kind == token.DLESS || op.Kind == token.DLESSDASH {
		if op.HeredocIndex < len(p.heredocs) {
			spec := p.heredocs[op.HeredocIndex]
			r.Heredoc = spec.Body
			if spec.Quoted {
				r.Kind = RedirHeredocQuoted
			}
		}
	} else {
		target, err := p.expect(token.WORD, "redirection target")
		if err != nil {
			return Redirection{}, err
		}
		r.Target = wordFromToken(target)
	}
	return r, nil
}

func wordFromToken(t token.Token) Word {
	w := Word{}
	if len(t.Parts) == 0 {
		if t.Lexeme != "" || t.Kind == token.WORD {
			w.Parts = []WordPart{{Kind: PartLiteral, Literal: t.Lexeme, Quote: QuoteKind(t.Quote)}}
		}
		return w
	}
	for _, p := range t.Parts {
		w.Parts = append(w.Parts, WordPart{
			Kind:    WordPartKind(p.Kind),
			Literal: p.Literal,
			Raw:     p.Raw,
			Quote:   QuoteKind(p.Quote),
		})
	}
	return w
}

// splitAssignment splits an ASSIGN token's literal text into name, optional
// index word, and value word, using its Parts when an expansion crosses the
// '=' boundary (only the literal-prefix 'NAME=' / 'NAME[idx]=' form is
// recognized by the lexer, so the split point is always inside a literal
// run at the start of Parts).
func splitAssignment(t token.Token) (name string, idx Word, value Word) {
	lex := t.Lexeme
	i := 0
	for i < len(lex) && (lex[i] == '_' || (lex[i] >= 'a' && lex[i] <= 'z') || (lex[i] >= 'A' && lex[i] <= 'Z') || (lex[i] >= '0' && lex[i] <= '9')) {
		i++
	}
	name = lex[:i]
	rest := lex[i:]
	if len(rest) > 0 && rest[0] == '[' {
		end := indexRune(rest, ']')
		if end >= 0 {
			idx = Word{Parts: []WordPart{{Kind: PartLiteral, Literal: rest[1:end]}}}
			rest = rest[end+1:]
		}
	}
	if len(rest) > 0 && rest[0] == '=' {
		rest = rest[1:]
	}
	value = wordFromRemainder(t, len(lex)-len(rest))
	return name, idx, value
}

func indexRune(s string, r byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == r {
			return i
		}
	}
	return -1
}

// wordFromRemainder rebuilds the value Word from t.Parts, dropping the
// literal "NAME=" (or "NAME[idx]=") prefix of byteOffset bytes from the
// first literal part.
func wordFromRemainder(t token.Token, byteOffset int) Word {
	if len(t.Parts) == 0 {
		return Word{}
	}
	w := Word{}
	consumed := 0
	for _, p := range t.Parts {
		if token.PartKind(p.Kind) != token.PartLiteral {
			if consumed >= byteOffset {
				w.Parts = append(w.Parts, WordPart{Kind: WordPartKind(p.Kind), Literal: p.Literal, Raw: p.Raw, Quote: QuoteKind(p.Quote)})
			}
			continue
		}
		lit := p.Literal
		if consumed < byteOffset {
			if consumed+len(lit) <= byteOffset {
				consumed += len(lit)
				continue
			}
			lit = lit[byteOffset-consumed:]
			consumed = byteOffset
		}
		if lit != "" {
			w.Parts = append(w.Parts, WordPart{Kind: PartLiteral, Literal: lit, Quote: QuoteKind(p.Quote)})
		}
	}
	return w
}
