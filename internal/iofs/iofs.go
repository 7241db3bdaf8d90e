// Package iofs manages directories and files of sp7tree on the local
// file system.
// This is an impure I/O package.
package iofs

import (
	_ "embed"
	"os"
	"strings"

	"github.com/gnames/sp7tree/pkg/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var ConfigYAML string

const masked = "********"

// EnsureDirs creates config and log directories under homeDir.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

// EnsureWorkDirs creates the data and output directories of a config.
func EnsureWorkDirs(cfg *config.Config) error {
	for _, v := range []string{cfg.Import.DataDir, cfg.OutputDir()} {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the documented template to the config file of a
// mode, unless the file already exists. It returns the path of the file.
func EnsureConfigFile(homeDir, mode string) (string, error) {
	configPath := config.ConfigFilePath(homeDir, mode)

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return "", CopyFileError(configPath, err)
	}

	return configPath, nil
}

// ConfigToYAML renders the effective configuration. The password is masked.
func ConfigToYAML(cfg *config.Config) (string, error) {
	c := *cfg
	if c.Specify.Password != "" {
		c.Specify.Password = masked
	}
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return "", EncodeConfigError(err)
	}
	if err := enc.Close(); err != nil {
		return "", EncodeConfigError(err)
	}
	return sb.String(), nil
}

// LoadEnv loads variables from existing env files into the environment.
// Variables that are already set win. Missing files are skipped, the number
// of loaded files is returned.
func LoadEnv(envFiles ...string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}

	if len(existing) == 0 {
		return 0, nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return 0, LoadEnvError(existing, err)
	}
	return len(existing), nil
}
