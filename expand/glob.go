package expand

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/opensh/opensh/token"
)

const escapeMarker = token.EscapeMarker

// GlobOptions carries the nullglob/failglob shopt toggles (spec.md §4.2
// phase 7; SPEC_FULL.md §6.3/§11's `shopt` surface) that change what an
// unquoted field that matches no pathname does.
type GlobOptions struct {
	NullGlob bool // a non-matching pattern expands to zero fields instead of itself
	FailGlob bool // a non-matching pattern is an expansion error
}

// hasGlobMeta reports whether s contains an unescaped pathname-expansion
// metacharacter (spec.md §4.2 phase 7). A metacharacter immediately
// preceded by token.EscapeMarker was backslash-escaped at lex time and is
// therefore literal, not a wildcard (spec.md §4.2/§9).
func hasGlobMeta(s string) bool {
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		if r == escapeMarker {
			escaped = true
			continue
		}
		switch r {
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// expandGlob resolves a single field against the filesystem using
// doublestar, which always treats `**` as a recursive match; there is no
// globstar option to turn that off (SPEC_FULL.md §10 wires this library in
// specifically for this phase). A field that matches nothing is returned unchanged by default
// (POSIX's "nullglob off"), dropped when nullglob is set, or turned into an
// error when failglob is set.
func expandGlob(field string, opts GlobOptions) ([]string, error) {
	if !hasGlobMeta(field) {
		return []string{stripEscapeMarker(field)}, nil
	}
	pattern := toGlobPattern(field)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil || len(matches) == 0 {
		if opts.FailGlob {
			return nil, newErr(ReasonBadSubstitution, "no match: %s", stripEscapeMarker(field))
		}
		if opts.NullGlob {
			return nil, nil
		}
		return []string{stripEscapeMarker(field)}, nil
	}
	sort.Strings(matches)
	return matches, nil
}

// toGlobPattern turns an EscapeMarker-carrying field into a doublestar
// pattern where escaped runes are backslash-escaped, the library's own
// convention for a literal metacharacter.
func toGlobPattern(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteByte('\\')
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == escapeMarker {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripEscapeMarker removes EscapeMarker runes, leaving the escaped
// character behind literally. Every exit point of the expansion pipeline
// that is not pathname matching must call this before handing text back to
// the caller.
func stripEscapeMarker(s string) string {
	if !strings.ContainsRune(s, escapeMarker) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == escapeMarker {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
