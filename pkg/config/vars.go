package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "sp7tree"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/sp7tree by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/sp7tree/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config file of a run mode.
// Returns ~/.config/sp7tree/config.yaml for the empty mode and
// ~/.config/sp7tree/config.<mode>.yaml otherwise.
func ConfigFilePath(homeDir, mode string) string {
	name := "config.yaml"
	if mode != "" {
		name = "config." + mode + ".yaml"
	}
	return filepath.Join(ConfigDir(homeDir), name)
}

// OutputDir returns the directory for exported files. A relative
// Import.OutputDir is resolved against the working directory.
func (c *Config) OutputDir() string {
	return filepath.Clean(c.Import.OutputDir)
}

// Bool dereferences an optional flag, nil counts as false.
func Bool(b *bool) bool {
	return b != nil && *b
}
