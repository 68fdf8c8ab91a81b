package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"podcast_studio/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadJSONAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"server_addr": ":9090", "llm": {"provider": "OpenAI", "model": "gpt-4o"}}`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerAddr != ":9090" || cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected values %+v", cfg)
	}
	if cfg.LLM.SpeechModel != "tts-1" || cfg.LLM.ImageSize != "1024x1024" || cfg.Storage.Kind != config.StorageLocal {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.RequestTimeout().Seconds() != 60 {
		t.Fatalf("timeout = %v", cfg.RequestTimeout())
	}
	if cfg.SessionTTL().Hours() != 24 {
		t.Fatalf("session ttl = %v", cfg.SessionTTL())
	}
}

func TestLoadTOML(t *testing.T) {
	want := config.Default()
	want.Storage = config.Storage{Kind: "remote", UploadURL: "https://files.example/upload", ResolveURL: "https://files.example/url", Token: "tok"}
	want.Media.ProbeDuration = true
	want.Log.Format = "json"
	data, err := toml.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := writeFile(t, "config.toml", string(data))

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage != want.Storage || !cfg.Media.ProbeDuration || cfg.Log.Format != "json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadReportsAllProblems(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"llm": {"provider": "deepseek"},
		"storage": {"kind": "remote"},
		"log": {"level": "loud"}
	}`)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"llm.base_url", "storage.upload_url", "storage.resolve_url", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fallback")
	t.Setenv("STUDIO_KEY", "from-env")

	cases := []struct {
		name string
		llm  config.LLM
		want string
	}{
		{"explicit", config.LLM{APIKey: "explicit", APIKeyEnv: "STUDIO_KEY"}, "explicit"},
		{"named env", config.LLM{APIKeyEnv: "STUDIO_KEY"}, "from-env"},
		{"empty named env", config.LLM{APIKeyEnv: "UNSET_STUDIO_KEY"}, "fallback"},
		{"default env", config.LLM{}, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.llm.ResolveAPIKey(); got != tc.want {
				t.Fatalf("ResolveAPIKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMissingKeyIsNotALoadError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeFile(t, "config.json", `{"llm": {"provider": "openai"}}`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.ResolveAPIKey() != "" {
		t.Fatal("expected empty key")
	}
}
