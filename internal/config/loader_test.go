package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Messenger.PageAccessToken = "page-token"
	cfg.Messenger.VerifyToken = "verify"
	cfg.NLU.AccessToken = "agent-token"
	return cfg
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Messenger.TextLimit != def.Messenger.TextLimit {
		t.Errorf("expected default text limit %d, got %d", def.Messenger.TextLimit, cfg.Messenger.TextLimit)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"messenger": map[string]any{
			"textLimit":       320,
			"messagesDelayMs": 50,
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Messenger.TextLimit != 320 {
		t.Errorf("expected textLimit 320, got %d", cfg.Messenger.TextLimit)
	}
	if got := cfg.MessagesDelay().Milliseconds(); got != 50 {
		t.Errorf("expected messages delay 50ms, got %dms", got)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "nlu:\n  lang: fr\ngateway:\n  port: 8080\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NLU.Lang != "fr" {
		t.Errorf("expected lang fr, got %q", cfg.NLU.Lang)
	}
	if cfg.Gateway.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Gateway.Port)
	}
	if cfg.NLU.BaseURL != DefaultConfig().NLU.BaseURL {
		t.Errorf("unset baseUrl should keep default, got %q", cfg.NLU.BaseURL)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for invalid JSON (falls back to default), got: %v", err)
	}
	if cfg.Gateway.Port != DefaultConfig().Gateway.Port {
		t.Errorf("expected default port, got %d", cfg.Gateway.Port)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("APIAI_ACCESS_TOKEN", "env-agent")
	t.Setenv("APIAI_LANG", "de")
	t.Setenv("FB_VERIFY_TOKEN", "env-verify")
	t.Setenv("FB_PAGE_ACCESS_TOKEN", "env-page")
	t.Setenv("APP_URL", "https://bank.example")

	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"gateway": map[string]any{"port": 9000},
		"nlu":     map[string]any{"accessToken": "file-agent"},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.Port != 7000 {
		t.Errorf("PORT should win, got %d", cfg.Gateway.Port)
	}
	if cfg.NLU.AccessToken != "env-agent" || cfg.NLU.Lang != "de" {
		t.Errorf("nlu env not applied: %+v", cfg.NLU)
	}
	if cfg.Messenger.VerifyToken != "env-verify" || cfg.Messenger.PageAccessToken != "env-page" {
		t.Errorf("messenger env not applied: %+v", cfg.Messenger)
	}
	if cfg.Gateway.AppURL != "https://bank.example" {
		t.Errorf("expected APP_URL applied, got %q", cfg.Gateway.AppURL)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CONVERSEBANK_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONVERSEBANK_TEST_KEY", "")
	os.Unsetenv("CONVERSEBANK_TEST_KEY")
	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("CONVERSEBANK_TEST_KEY"); got != "from-file" {
		t.Errorf("expected from-file, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}

	cfg.Messenger.PageAccessToken = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing page token")
	}
	if !strings.Contains(err.Error(), "PageAccessToken") {
		t.Errorf("error should name the field, got: %v", err)
	}

	cfg = validConfig()
	cfg.Alert.SlackWebhookURL = "not a url"
	if cfg.Validate() == nil {
		t.Error("expected error for malformed slack webhook url")
	}

	cfg = validConfig()
	cfg.Messenger.TextLimit = 0
	if cfg.Validate() == nil {
		t.Error("expected error for zero text limit")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := validConfig()
	original.Banking.Retries = 5
	original.Messenger.AllowFrom = []string{"u1"}

	if err := Save(&original, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Banking.Retries != 5 {
		t.Errorf("retries mismatch: got %d, want 5", loaded.Banking.Retries)
	}
	if len(loaded.Messenger.AllowFrom) != 1 || loaded.Messenger.AllowFrom[0] != "u1" {
		t.Errorf("allowFrom mismatch: got %v", loaded.Messenger.AllowFrom)
	}
}

func TestSave_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected permissions 0600, got %04o", perm)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestLoad_PartialConfig_UsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"banking": map[string]any{"retries": 0},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Banking.Retries != 0 {
		t.Errorf("expected retries 0, got %d", cfg.Banking.Retries)
	}
	if cfg.Banking.TransferURL != def.Banking.TransferURL {
		t.Errorf("expected default transfer url, got %q", cfg.Banking.TransferURL)
	}
	if cfg.PendingTTL() != def.PendingTTL() {
		t.Errorf("expected default pending ttl %v, got %v", def.PendingTTL(), cfg.PendingTTL())
	}
}
