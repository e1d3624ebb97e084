package expand

import "github.com/opensh/opensh/ast"

// field is one unsplit-vs-splittable run produced while walking a word's
// segments, immediately before IFS field splitting.
type field struct {
	text  string
	split bool // unquoted text is eligible for IFS splitting and globbing
}

// splitFields applies IFS field splitting (spec.md §4.2 phase 6) across a
// word's segments, then folds consecutive runs back together respecting
// quote boundaries so quoted text never gets split even when adjacent to
// an unquoted, splittable run.
func splitFields(segs []segment, ifs string) []field {
	if ifs == "" {
		// IFS set to empty disables splitting entirely; concatenate as one field.
		var b []byte
		for _, s := range segs {
			b = append(b, s.text...)
		}
		return []field{{text: string(b), split: false}}
	}

	var fields []field
	var cur []byte
	curHasContent := false
	curHasUnquoted := false

	flush := func() {
		if curHasContent {
			fields = append(fields, field{text: string(cur), split: curHasUnquoted})
			cur = nil
			curHasContent = false
			curHasUnquoted = false
		}
	}

	for _, s := range segs {
		if s.quote != ast.NoQuote {
			cur = append(cur, s.text...)
			curHasContent = true
			continue
		}
		start := 0
		for i := 0; i < len(s.text); i++ {
			if isIFS(s.text[i], ifs) {
				cur = append(cur, s.text[start:i]...)
				if i > start {
					curHasContent = true
					curHasUnquoted = true
				}
				flush()
				start = i + 1
			}
		}
		if start < len(s.text) {
			cur = append(cur, s.text[start:]...)
			curHasContent = true
			curHasUnquoted = true
		}
	}
	flush()
	return fields
}

func isIFS(b byte, ifs string) bool {
	for i := 0; i < len(ifs); i++ {
		if ifs[i] == b {
			return true
		}
	}
	return false
}
