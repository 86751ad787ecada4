package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfigFile is the name of the editable config inside the data dir.
const UserConfigFile = "config.yml"

// EnsureUserConfig returns the path of the user config inside dataDir. On
// first start it is seeded from the shipped file at seedPath, or from the
// compiled defaults when that file does not exist.
func EnsureUserConfig(dataDir, seedPath string) (string, error) {
	userPath := filepath.Join(dataDir, UserConfigFile)
	switch _, err := os.Stat(userPath); {
	case err == nil:
		return userPath, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}

	seed, err := os.ReadFile(seedPath)
	if errors.Is(err, os.ErrNotExist) {
		def := Default()
		def.App.DataDir = dataDir
		if seed, err = yaml.Marshal(&def); err != nil {
			return "", fmt.Errorf("encode default config: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("read seed config: %w", err)
	}

	if err := writeAtomic(userPath, seed); err != nil {
		return "", fmt.Errorf("seed user config: %w", err)
	}
	return userPath, nil
}
