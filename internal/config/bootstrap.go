package config

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(dir, "jobscout", "config.yml")
}

// EnsureUserConfig writes Default() to path unless a file already exists
// there. It reports whether it created the file.
func EnsureUserConfig(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := SaveAtomic(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}
