package config

// Default values for shell options and ambient configuration.
const (
	DefaultIFS            = " \t\n"
	DefaultPS1            = `\u@\h:\w\$ `
	DefaultPS2            = "> "
	DefaultHistFile       = ".opensh_history"
	DefaultHistSize       = 500
	DefaultHistFileSize   = 500
	DefaultMaxHistorySize = 100 * 1024 * 1024 // bytes, mirrors HISTORY_MAX_SIZE parsing
	DefaultRCFile         = ".openshrc"
	DefaultAliasFile      = ".opensh_aliases"
)
