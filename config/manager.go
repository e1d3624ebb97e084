package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ConfigManager centralizes access to shell options and ambient
// configuration. Priority order: flags (applied by cli) > environment
// variables > .env-style rc file > compiled defaults (spec.md §6.3).
type ConfigManager struct {
	mu     sync.RWMutex
	values map[string]interface{}
	logger *zap.Logger
}

// Global is the process-wide ConfigManager instance, set once by main.
var Global *ConfigManager

// New creates a ConfigManager bound to logger.
func New(logger *zap.Logger) *ConfigManager {
	return &ConfigManager{
		values: make(map[string]interface{}),
		logger: logger,
	}
}

// Load populates configuration from every source, lowest priority first.
func (cm *ConfigManager) Load(rcFile string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.loadDefaults()
	cm.loadRCFile(rcFile)
	cm.loadEnvVars()
}

// Reload re-reads the rc file (not the environment) without disturbing values
// set at runtime by `set`/`export` unless they were overridden there too —
// it never wipes cm.values wholesale, because unlike chat-provider config a
// shell's live variable state must survive an rc-file watch tick (see
// SPEC_FULL.md §6.3).
func (cm *ConfigManager) Reload(rcFile string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.loadRCFile(rcFile)
	cm.logger.Info("shell options reloaded", zap.String("rcfile", rcFile))
}

func (cm *ConfigManager) loadDefaults() {
	cm.values["IFS"] = DefaultIFS
	cm.values["PS1"] = DefaultPS1
	cm.values["PS2"] = DefaultPS2
	cm.values["HISTFILE"] = DefaultHistFile
	cm.values["HISTSIZE"] = DefaultHistSize
	cm.values["HISTFILESIZE"] = DefaultHistFileSize
	cm.values["errexit"] = false
	cm.values["nounset"] = false
	cm.values["pipefail"] = false
	cm.values["posix"] = false
	cm.values["xtrace"] = false
	cm.values["noclobber"] = false
}

// loadRCFile loads the given rc file path with godotenv, the same
// mechanism the teacher used for .env bootstrap.
func (cm *ConfigManager) loadRCFile(rcFile string) {
	envMap, err := godotenv.Read(rcFile)
	if err != nil {
		cm.logger.Debug("no rc file loaded", zap.String("path", rcFile), zap.Error(err))
		return
	}
	for key, value := range envMap {
		cm.values[key] = value
	}
}

// loadEnvVars loads the process environment, which outranks the rc file.
func (cm *ConfigManager) loadEnvVars() {
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			cm.values[pair[0]] = pair[1]
		}
	}
}

// Set injects a value, typically from a CLI flag or `set -o`/`shopt`.
func (cm *ConfigManager) Set(key string, value interface{}) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.values[key] = value
}

// GetString returns a configuration value as a string.
func (cm *ConfigManager) GetString(key string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	switch v := cm.values[key].(type) {
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// GetInt returns a configuration value as an int, or defaultValue.
func (cm *ConfigManager) GetInt(key string, defaultValue int) int {
	cm.mu.RLock()
	if iv, ok := cm.values[key].(int); ok {
		cm.mu.RUnlock()
		return iv
	}
	cm.mu.RUnlock()
	if s := cm.GetString(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return defaultValue
}

// GetBool returns a shell option flag. Unknown keys default to false.
func (cm *ConfigManager) GetBool(key string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if bv, ok := cm.values[key].(bool); ok {
		return bv
	}
	if s, ok := cm.values[key].(string); ok {
		b, err := strconv.ParseBool(s)
		return err == nil && b
	}
	return false
}

// SetBool sets a shell option flag (`set -o name` / `set +o name`).
func (cm *ConfigManager) SetBool(key string, value bool) {
	cm.Set(key, value)
}
