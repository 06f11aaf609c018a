// Package config handles configuration loading, validation, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the systrayctl directory under the user config dir.
	DirName = "systrayctl"

	// FileName is the name of the configuration file.
	FileName = "config.yaml"
)

// Dir returns the path to the configuration directory ($XDG_CONFIG_HOME/systrayctl/).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

// File returns the path to the default config.yaml.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// ResolveFile returns override when set, otherwise the default config path.
func ResolveFile(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	return File()
}
