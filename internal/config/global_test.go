package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/pubsite/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "pubsite", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.SitePath != "" {
		t.Errorf("SitePath = %q, want empty", cfg.SitePath)
	}
}

func writeGlobalConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	return tmpDir
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, "site_path: ~/sites/me\nverbose: true\n")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "sites/me"); cfg.SitePath != want {
		t.Errorf("SitePath = %q, want %q", cfg.SitePath, want)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, "site_path: [unclosed")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should fail on invalid YAML")
	}
}

func TestValidateSitePath(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	siteDir := t.TempDir()
	writeGlobalConfig(t, "site_path: "+siteDir+"\n")

	got, err := ValidateSitePath()
	if err != nil {
		t.Fatalf("ValidateSitePath() error = %v", err)
	}
	if got != siteDir {
		t.Errorf("ValidateSitePath() = %q, want %q", got, siteDir)
	}
}

func TestValidateSitePath_Missing(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, "site_path: /nonexistent/pubsite/site\n")

	_, err := ValidateSitePath()
	if !errors.Is(err, ErrSitePathNotExist) {
		t.Errorf("ValidateSitePath() error = %v, want ErrSitePathNotExist", err)
	}
}

func TestValidateSitePath_Unset(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := ValidateSitePath()
	if err != nil || got != "" {
		t.Errorf("ValidateSitePath() = %q, %v, want empty and nil", got, err)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	msg := HelpfulConfigMessage()
	if !strings.Contains(msg, "/custom/config/pubsite/config.yml") {
		t.Errorf("HelpfulConfigMessage() missing config path:\n%s", msg)
	}
	if !strings.Contains(msg, "pubsite init") {
		t.Errorf("HelpfulConfigMessage() missing init hint:\n%s", msg)
	}
}
