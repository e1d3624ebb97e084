package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/opensh/opensh/state"
)

func TestSaveAndLoadAliases(t *testing.T) {
	sh := state.New(zap.NewNop(), "test")
	sh.Alias["ll"] = state.Alias{Name: "ll", Value: "ls -la"}
	sh.Alias["gs"] = state.Alias{Name: "gs", Value: "git status"}

	path := filepath.Join(t.TempDir(), "aliases.yaml")
	if err := SaveAliases(sh, path); err != nil {
		t.Fatalf("SaveAliases: %v", err)
	}

	loaded := state.New(zap.NewNop(), "test2")
	if err := LoadAliases(loaded, path); err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}

	assert.Equal(t, "ls -la", loaded.Alias["ll"].Value)
	assert.Equal(t, "git status", loaded.Alias["gs"].Value)
}

func TestLoadAliasesMissingFile(t *testing.T) {
	sh := state.New(zap.NewNop(), "test")
	err := LoadAliases(sh, filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.NoError(t, err)
}
