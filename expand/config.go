package expand

// Config wires expand's callbacks into the executor without expand ever
// importing executor, breaking the natural import cycle (command
// substitution must run a command, which is the executor's job, while the
// executor needs word expansion, which is expand's job).
type Config struct {
	// CommandSubst runs raw shell source (the text inside $(...) or `...`)
	// and returns its captured, trailing-newline-trimmed stdout.
	CommandSubst func(raw string) (string, error)

	// ProcessSubst runs raw shell source hooked to one end of a pipe and
	// returns the /dev/fd path substituted in its place (SPEC_FULL.md §11,
	// §9(c)). output reports whether it is >(...) (true) or <(...) (false).
	ProcessSubst func(raw string, output bool) (string, error)
}
