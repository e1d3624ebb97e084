package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opensh/opensh/config"
)

// HistoryManager persists command history to HISTFILE, trimming it to
// HISTFILESIZE lines the way bash's own history file management does
// (spec.md §6.5, SPEC_FULL.md §6.3).
type HistoryManager struct {
	historyFile     string
	logger          *zap.Logger
	maxHistSize     int // HISTSIZE: max entries kept in memory
	maxHistFileSize int // HISTFILESIZE: max lines kept on disk
}

// NewHistoryManager builds a HistoryManager from the resolved HISTFILE/
// HISTSIZE/HISTFILESIZE configuration values.
func NewHistoryManager(logger *zap.Logger, cm *config.ConfigManager) *HistoryManager {
	historyFile := cm.GetString("HISTFILE")
	if historyFile == "" {
		historyFile = config.DefaultHistFile
	}
	historyFile = expandHome(historyFile)

	histSize := cm.GetInt("HISTSIZE", config.DefaultHistSize)
	histFileSize := cm.GetInt("HISTFILESIZE", config.DefaultHistFileSize)

	return &HistoryManager{
		historyFile:     historyFile,
		logger:          logger,
		maxHistSize:     histSize,
		maxHistFileSize: histFileSize,
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + strings.TrimPrefix(path, "~")
}

// LoadHistory reads HISTFILE, keeping at most HISTSIZE most-recent entries.
func (hm *HistoryManager) LoadHistory() ([]string, error) {
	f, err := os.Open(hm.historyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		hm.logger.Warn("could not load history", zap.Error(err))
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var history []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		history = append(history, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		hm.logger.Warn("error reading history", zap.Error(err))
		return nil, err
	}

	if len(history) > hm.maxHistSize {
		history = history[len(history)-hm.maxHistSize:]
	}
	return history, nil
}

// SaveHistory rewrites HISTFILE with commandHistory, trimmed to
// HISTFILESIZE lines, and backs up the previous file if it had grown
// unusually large (e.g. a crashed shell appended without ever trimming).
func (hm *HistoryManager) SaveHistory(commandHistory []string) error {
	if len(commandHistory) > hm.maxHistFileSize {
		commandHistory = commandHistory[len(commandHistory)-hm.maxHistFileSize:]
	}

	if fi, err := os.Stat(hm.historyFile); err == nil && fi.Size() > int64(hm.maxHistFileSize)*256 {
		backupFile := fmt.Sprintf("%s.bak-%d", hm.historyFile, time.Now().Unix())
		if err := os.Rename(hm.historyFile, backupFile); err != nil {
			hm.logger.Warn("could not back up history file", zap.Error(err))
		} else {
			hm.logger.Info("history backup created", zap.String("backupFile", backupFile))
		}
	}

	f, err := os.OpenFile(hm.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		hm.logger.Warn("could not save history", zap.Error(err))
		return err
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	for _, cmd := range commandHistory {
		_, _ = fmt.Fprintln(w, cmd)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	hm.logger.Debug("history saved", zap.String("historyFile", hm.historyFile), zap.String("size", sizeLabel(len(commandHistory))))
	return nil
}

// sizeLabel formats an entry count for log fields.
func sizeLabel(n int) string {
	return strconv.Itoa(n) + " entries"
}
