package cli

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/opensh/opensh/config"
)

func TestHistoryManager_LoadAndSaveHistory(t *testing.T) {
	logger := zap.NewNop()
	cm := config.New(logger)
	cm.Load("")
	cm.Set("HISTFILE", filepath.Join(t.TempDir(), "history"))

	hm := NewHistoryManager(logger, cm)

	commands := []string{"echo hi", "ls -la", "exit"}
	if err := hm.SaveHistory(commands); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	loaded, err := hm.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(loaded) != len(commands) {
		t.Fatalf("expected %d commands, got %d", len(commands), len(loaded))
	}
	for i, c := range commands {
		if loaded[i] != c {
			t.Errorf("entry %d: expected %q, got %q", i, c, loaded[i])
		}
	}
}

func TestHistoryManager_LoadMissingFile(t *testing.T) {
	logger := zap.NewNop()
	cm := config.New(logger)
	cm.Load("")
	cm.Set("HISTFILE", filepath.Join(t.TempDir(), "does-not-exist"))

	hm := NewHistoryManager(logger, cm)
	loaded, err := hm.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory on missing file should not error: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil history, got %v", loaded)
	}
}

func TestHistoryManager_TrimsToHistFileSize(t *testing.T) {
	logger := zap.NewNop()
	cm := config.New(logger)
	cm.Load("")
	cm.Set("HISTFILE", filepath.Join(t.TempDir(), "history"))
	cm.Set("HISTFILESIZE", 2)

	hm := NewHistoryManager(logger, cm)
	if err := hm.SaveHistory([]string{"one", "two", "three"}); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	data, err := os.ReadFile(hm.historyFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "two\nthree\n"
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, string(data))
	}
}
