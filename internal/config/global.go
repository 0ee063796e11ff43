package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/pubsite/config.yml.
type GlobalConfig struct {
	SitePath string `yaml:"site_path,omitempty"` // Default site when not run inside one
	Verbose  bool   `yaml:"verbose,omitempty"`   // Development logging by default
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "pubsite"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pubsite/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.SitePath != "" {
		cfg.SitePath = ExpandPath(cfg.SitePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetSitePath returns the configured default site from global config.
func GetSitePath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.SitePath
}

// ErrSitePathNotExist is returned when the configured site_path doesn't exist.
var ErrSitePathNotExist = errors.New("site_path does not exist")

// ValidateSitePath returns the default site path after checking it exists.
// An unset site_path returns "" and no error.
func ValidateSitePath() (string, error) {
	path := GetSitePath()
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSitePathNotExist, path)
	}
	return path, nil
}

// HelpfulConfigMessage returns a helpful message when no site is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No pubsite site found.

Run 'pubsite init' in your site directory, or create %s to set a default site:
  mkdir -p %s
  echo 'site_path: /path/to/your/site' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
