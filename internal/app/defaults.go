package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - OLAAF_CONFIG_PATH: config file location (default: ~/.config/olaaf.toml)
//   - OLAAF_HOME: base directory for the index, logs and keys (default: ~/.local/share/olaaf)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome("OLAAF_CONFIG_PATH", ".config", "olaaf.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := envOrHome("OLAAF_HOME", ".local", "share", "olaaf")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
