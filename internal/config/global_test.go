package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/bibkeep/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config
	os.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "bibkeep", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)
	os.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.S2APIKey != "" || cfg.IEEEAPIKey != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	configHome := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := "s2_api_key: sk-test\nieee_api_key: ieee-test\nbrowser: firefox\n"
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.S2APIKey != "sk-test" {
		t.Errorf("S2APIKey = %q", cfg.S2APIKey)
	}
	if cfg.IEEEAPIKey != "ieee-test" {
		t.Errorf("IEEEAPIKey = %q", cfg.IEEEAPIKey)
	}
	if cfg.Browser != "firefox" {
		t.Errorf("Browser = %q", cfg.Browser)
	}
}

func TestGetS2APIKey_EnvOverrides(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("S2_API_KEY")
	defer os.Setenv("S2_API_KEY", orig)
	os.Setenv("S2_API_KEY", "from-env")

	if got := GetS2APIKey(); got != "from-env" {
		t.Errorf("GetS2APIKey() = %q, want env value", got)
	}
}
