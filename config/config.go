// Package config loads the studio configuration from JSON or TOML.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the whole service configuration.
type Config struct {
	ServerAddr            string   `json:"server_addr,omitempty" toml:"server_addr"`
	PublicBaseURL         string   `json:"public_base_url,omitempty" toml:"public_base_url"`
	DataPath              string   `json:"data_path,omitempty" toml:"data_path"`
	RequestTimeoutSeconds int      `json:"request_timeout_seconds,omitempty" toml:"request_timeout_seconds"`
	LLM                   LLM      `json:"llm" toml:"llm"`
	Storage               Storage  `json:"storage" toml:"storage"`
	Identity              Identity `json:"identity" toml:"identity"`
	Media                 Media    `json:"media" toml:"media"`
	Limits                Limits   `json:"limits" toml:"limits"`
	Log                   Log      `json:"log" toml:"log"`
}

// LLM 生成服务配置（OpenAI 或兼容接口）。
type LLM struct {
	Provider    string `json:"provider,omitempty" toml:"provider"`
	Model       string `json:"model,omitempty" toml:"model"`
	APIKey      string `json:"api_key,omitempty" toml:"api_key"`
	APIKeyEnv   string `json:"api_key_env,omitempty" toml:"api_key_env"`
	BaseURL     string `json:"base_url,omitempty" toml:"base_url"`
	SpeechModel string `json:"speech_model,omitempty" toml:"speech_model"`
	ImageModel  string `json:"image_model,omitempty" toml:"image_model"`
	ImageSize   string `json:"image_size,omitempty" toml:"image_size"`
}

// Storage selects where generated assets are kept.
type Storage struct {
	Kind       string `json:"kind,omitempty" toml:"kind"`
	UploadURL  string `json:"upload_url,omitempty" toml:"upload_url"`
	ResolveURL string `json:"resolve_url,omitempty" toml:"resolve_url"`
	Token      string `json:"token,omitempty" toml:"token"`
}

// Identity holds the user-sync webhook secret.
type Identity struct {
	WebhookSecret string `json:"webhook_secret,omitempty" toml:"webhook_secret"`
}

// Media configures the optional server-side duration probe.
type Media struct {
	FFprobePath   string `json:"ffprobe_path,omitempty" toml:"ffprobe_path"`
	ProbeDuration bool   `json:"probe_duration,omitempty" toml:"probe_duration"`
}

// Limits caps generation and enhancement requests per session.
// SessionIdleMinutes drops editing sessions nobody has touched for that
// long.
type Limits struct {
	GeneratePerMinute  int `json:"generate_per_minute,omitempty" toml:"generate_per_minute"`
	Burst              int `json:"burst,omitempty" toml:"burst"`
	SessionIdleMinutes int `json:"session_idle_minutes,omitempty" toml:"session_idle_minutes"`
}

// Log controls the slog handler built by main.
type Log struct {
	Level  string `json:"level,omitempty" toml:"level"`
	Format string `json:"format,omitempty" toml:"format"`
}

const (
	StorageLocal  = "local"
	StorageRemote = "remote"

	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"

	defaultAPIKeyEnv = "OPENAI_API_KEY"
)

// Default returns a configuration that talks to OpenAI and keeps SQLite
// under ./data.
func Default() Config {
	return Config{
		ServerAddr:            ":8080",
		PublicBaseURL:         "http://localhost:8080",
		DataPath:              filepath.Join("data", "studio.db"),
		RequestTimeoutSeconds: 60,
		LLM: LLM{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			SpeechModel: "tts-1",
			ImageModel:  "dall-e-3",
			ImageSize:   "1024x1024",
		},
		Storage: Storage{Kind: StorageLocal},
		Media:   Media{FFprobePath: "ffprobe"},
		Limits:  Limits{GeneratePerMinute: 10, Burst: 3, SessionIdleMinutes: 24 * 60},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads the config file at path. Files ending in .toml are decoded as
// TOML, everything else as JSON. Values absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequestTimeout is the per-request deadline for generation calls.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// SessionTTL is how long an untouched editing session is kept.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Limits.SessionIdleMinutes) * time.Minute
}

// ResolveAPIKey returns the explicit key, else the variable named by
// api_key_env, else OPENAI_API_KEY. An empty result is not an error here;
// the generation client reports it on every call instead.
func (l LLM) ResolveAPIKey() string {
	if key := strings.TrimSpace(l.APIKey); key != "" {
		return key
	}
	if l.APIKeyEnv != "" {
		if key := strings.TrimSpace(os.Getenv(l.APIKeyEnv)); key != "" {
			return key
		}
	}
	return strings.TrimSpace(os.Getenv(defaultAPIKeyEnv))
}
