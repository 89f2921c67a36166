package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvToken, "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default api url, got %q", cfg.APIURL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.Filter != "all" {
		t.Errorf("expected filter all, got %q", cfg.Filter)
	}
	if cfg.BearerToken() != nil {
		t.Error("expected no token")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
api_url = "http://tasks.internal:9000"
timeout = "2s"
log_level = "info"
filter = "active"
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvToken, "")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://tasks.internal:9000" {
		t.Errorf("expected file api url, got %q", cfg.APIURL)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.Timeout)
	}
	if cfg.LogLevel != "info" || cfg.Filter != "active" {
		t.Errorf("unexpected log level/filter: %q %q", cfg.LogLevel, cfg.Filter)
	}

	t.Setenv(EnvAPIURL, "http://override:1")
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://override:1" {
		t.Errorf("expected env to override file, got %q", cfg.APIURL)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(`timeout = "soon"`), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestToken_SaveLoadRemove(t *testing.T) {
	t.Setenv(EnvToken, "")
	cfg, _ := New(filepath.Join(t.TempDir(), "nested"))

	if cfg.HasToken() {
		t.Fatal("expected no token initially")
	}
	if err := cfg.SaveToken(&oauth2.Token{AccessToken: "abc", TokenType: "Bearer"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(cfg.TokenPath())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(cfg.Dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Token != "abc" {
		t.Errorf("expected token abc, got %q", loaded.Token)
	}
	if tok := loaded.BearerToken(); tok == nil || tok.AccessToken != "abc" {
		t.Errorf("unexpected bearer token: %+v", tok)
	}

	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if cfg.HasToken() {
		t.Error("expected token removed")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %q", got)
	}
}
