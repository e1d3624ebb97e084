package lexer

import "github.com/opensh/opensh/token"

// Mode is the lexer's current nesting/quoting context (spec.md §3, "Lexer state").
type Mode int

const (
	ModeNormal Mode = iota
	ModeInDoubleQuote
	ModeInSingleQuote
	ModeInAnsi
	ModeInBacktick
	ModeInBraceExpansion
	ModeInArith
	ModeInParamExpansion
	ModeInHeredoc
)

// HeredocSpec records a pending heredoc introduced by <<WORD or <<-WORD
// until its body is collected from the following input lines.
type HeredocSpec struct {
	Delimiter  string
	Quoted     bool // disables expansion in the body
	StripTabs  bool // the <<- form
	TokenIndex int  // index of the introducing token in the output stream
	Body       string
}

// State is the full context-sensitive lexer state threaded through
// tokenization (spec.md §3, "Lexer state").
type State struct {
	Mode           Mode
	BracketDepth   int
	ParenDepth     int
	BraceDepth     int
	ArithDepth     int
	CommandPos     bool
	QuoteStack     []token.QuoteKind
	PendingHeredoc []*HeredocSpec
	PosixStrict    bool
}

func newState(posixStrict bool) *State {
	return &State{
		Mode:        ModeNormal,
		CommandPos:  true,
		PosixStrict: posixStrict,
	}
}

func (s *State) pushQuote(q token.QuoteKind) {
	s.QuoteStack = append(s.QuoteStack, q)
}

func (s *State) popQuote() {
	if len(s.QuoteStack) > 0 {
		s.QuoteStack = s.QuoteStack[:len(s.QuoteStack)-1]
	}
}
