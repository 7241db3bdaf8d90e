// Package iotesting provides shared test utilities: in-memory Specify and
// name-authority fakes and temporary configuration.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"path/filepath"
	"testing"

	"github.com/gnames/sp7tree/pkg/config"
)

// SetupHome creates a temporary home directory and sets HOME to it, so
// config files and logs of a test never touch the real home. The
// directory is removed when the test finishes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    home := iotesting.SetupHome(t)
//	    // config.ConfigDir(home) is now empty
//	}
func SetupHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// TestConfig returns a configuration pointing to a Specify test server,
// with output written to a temporary directory.
func TestConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptHomeDir(dir),
		config.OptSpecifyBaseURL(baseURL),
		config.OptSpecifyUsername("tester"),
		config.OptSpecifyPassword("secret"),
		config.OptSpecifyCollectionID(CollectionID),
		config.OptImportDataDir(filepath.Join(dir, "data")),
		config.OptImportOutputDir(filepath.Join(dir, "output")),
		config.OptLogDestination("stderr"),
	})
	return cfg
}
