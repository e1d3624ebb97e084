package executor

import "path/filepath"

// filepathMatch matches a case-statement pattern against a subject using
// shell glob syntax (spec.md §4.3, "Case pattern matching" reuses the same
// metacharacters as pathname expansion).
func filepathMatch(pattern, s string) (bool, error) {
	if pattern == s {
		return true, nil
	}
	return filepath.Match(pattern, s)
}
