package builtin

import (
	"fmt"
	"os"

	"github.com/opensh/opensh/state"
	"github.com/opensh/opensh/utils"
)

// builtinAlias implements alias listing and assignment. Persisted storage
// (SPEC_FULL.md §11, "alias table... persisted optionally to YAML") is the
// cli package's concern; this builtin only touches the in-memory table.
func builtinAlias(sh *state.Shell, args []string) int {
	if len(args) == 1 {
		for name, a := range sh.Alias {
			fmt.Printf("alias %s=%s\n", name, utils.ShellQuote(a.Value))
		}
		return 0
	}
	status := 0
	for _, a := range args[1:] {
		name, value, hasValue := splitNameValue(a)
		if !hasValue {
			existing, ok := sh.Alias[name]
			if !ok {
				fmt.Fprintf(os.Stderr, "alias: %s: not found\n", name)
				status = 1
				continue
			}
			fmt.Printf("alias %s=%s\n", name, utils.ShellQuote(existing.Value))
			continue
		}
		sh.Alias[name] = state.Alias{Name: name, Value: value}
	}
	return status
}

func builtinUnalias(sh *state.Shell, args []string) int {
	if len(args) > 1 && args[1] == "-a" {
		sh.Alias = make(map[string]state.Alias)
		return 0
	}
	for _, name := range args[1:] {
		delete(sh.Alias, name)
	}
	return 0
}
