package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, `{
		"app": {"name": "samvad"},
		"memory": {"type": "sqlite", "path": "samvad.db"}
	}`))

	if cfg.Plans.Dir != "./plans" {
		t.Errorf("expected default plans dir, got %q", cfg.Plans.Dir)
	}
	if cfg.Session.IdleTimeoutSeconds != 1800 {
		t.Errorf("expected default idle timeout, got %d", cfg.Session.IdleTimeoutSeconds)
	}
}

func TestGetDefaultProvider(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, `{
		"providers": {
			"openai":     {"api_key": "sk-x", "model": "gpt-4o-mini", "enabled": false},
			"openrouter": {"api_key": "or-x", "model": "llama-3", "enabled": true}
		}
	}`))

	name, p := cfg.GetDefaultProvider()
	if name != "openrouter" {
		t.Fatalf("expected the enabled provider, got %q", name)
	}
	if p.Model != "llama-3" {
		t.Errorf("wrong provider config returned: %+v", p)
	}
}

func TestGetGateway(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, `{
		"gateways": {
			"telegram": {"token": "123:abc", "enabled": true},
			"discord":  {"token": "", "enabled": true}
		}
	}`))

	if _, ok := cfg.GetGateway("telegram"); !ok {
		t.Error("enabled gateway with token should be returned")
	}
	if _, ok := cfg.GetGateway("discord"); ok {
		t.Error("gateway without a token must be skipped")
	}
	if _, ok := cfg.GetGateway("slack"); ok {
		t.Error("unknown gateway must be skipped")
	}
}
