package cli

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/opensh/opensh/config"
)

// EnvironmentManager watches the shell's rc file and reloads its option
// and variable defaults into the live ConfigManager when it changes on
// disk, the hot-reload surface SPEC_FULL.md §6.3 describes. It never
// re-sources the file as shell commands on its own; reload of in-shell
// state (functions, aliases, exported variables already set by `set`/
// `export`) is left to an explicit `source` of the same file.
type EnvironmentManager struct {
	logger  *zap.Logger
	cm      *config.ConfigManager
	rcFile  string
	watcher *fsnotify.Watcher
}

// NewEnvironmentManager builds a manager bound to rcFile; rcFile need not
// exist yet (fsnotify.Add fails silently and the manager stays idle).
func NewEnvironmentManager(logger *zap.Logger, cm *config.ConfigManager, rcFile string) *EnvironmentManager {
	return &EnvironmentManager{logger: logger, cm: cm, rcFile: rcFile}
}

// Watch starts watching the rc file in the background. Call Close to stop.
// A missing rc file is not an error: watching simply never starts, the
// same as an interactive shell with no ~/.openshrc.
func (em *EnvironmentManager) Watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		em.logger.Warn("could not start rc file watcher", zap.Error(err))
		return
	}
	if err := watcher.Add(em.rcFile); err != nil {
		em.logger.Debug("rc file not watched", zap.String("rcfile", em.rcFile), zap.Error(err))
		_ = watcher.Close()
		return
	}
	em.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					em.cm.Reload(em.rcFile)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				em.logger.Warn("rc file watcher error", zap.Error(err))
			}
		}
	}()
}

// Close stops the watcher, if one was started.
func (em *EnvironmentManager) Close() {
	if em.watcher != nil {
		_ = em.watcher.Close()
	}
}
