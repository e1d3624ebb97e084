package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// CompleteFilePath lists filesystem entries under prefix's directory whose
// name starts with prefix's final path component. The REPL does not call
// it; it has no tab completion.
func CompleteFilePath(prefix string) []string {
	var completions []string

	dir, filePrefix := filepath.Split(prefix)
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return completions
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, filePrefix) {
			path := filepath.Join(dir, name)
			if entry.IsDir() {
				path += string(os.PathSeparator)
			}
			completions = append(completions, path)
		}
	}

	return completions
}
