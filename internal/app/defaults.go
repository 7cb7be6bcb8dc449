package app

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - MCAT_CONFIG_PATH: config file location (default: ~/.config/mcat.toml)
//   - MCAT_HOME: base directory for mcat data (default: ~/.local/share/mcat)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadEnv reads environment overrides from path (usually ".env").
// Variables already set in the environment win. A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, iofs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("MCAT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "mcat.toml"), nil
}

// getBaseDir returns the base directory for mcat data, checking MCAT_HOME
// first, then falling back to the XDG default ~/.local/share/mcat.
func getBaseDir() (string, error) {
	if path := os.Getenv("MCAT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "mcat"), nil
}
