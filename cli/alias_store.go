package cli

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opensh/opensh/state"
)

// aliasFile is the on-disk shape for persisted aliases, loaded back into
// sh.Alias at startup and written out with SaveAliases (SPEC_FULL.md §11:
// "alias table... persisted optionally to YAML").
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads a YAML alias file into sh.Alias. A missing file is not
// an error: a shell with no saved aliases just starts with none.
func LoadAliases(sh *state.Shell, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for name, value := range f.Aliases {
		sh.Alias[name] = state.Alias{Name: name, Value: value}
	}
	return nil
}

// SaveAliases writes sh.Alias out as YAML, the counterpart to LoadAliases,
// driven by the `--dump-aliases` flag rather than run automatically on
// every alias definition (an explicit save, like bash's own lack of
// automatic alias persistence).
func SaveAliases(sh *state.Shell, path string) error {
	f := aliasFile{Aliases: make(map[string]string, len(sh.Alias))}
	for name, a := range sh.Alias {
		f.Aliases[name] = a.Value
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
