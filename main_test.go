package main

import (
	"strings"
	"testing"
	"time"

	"podcast_studio/config"
	"podcast_studio/episode"
	"podcast_studio/generator"
)

func TestBuildClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cases := []struct {
		name    string
		cfg     config.LLM
		wantErr bool
		mock    bool
	}{
		{name: "openai without key still builds", cfg: config.LLM{Provider: config.ProviderOpenAI}},
		{name: "deepseek needs base url", cfg: config.LLM{Provider: config.ProviderDeepSeek}, wantErr: true},
		{name: "deepseek", cfg: config.LLM{Provider: config.ProviderDeepSeek, BaseURL: "https://api.deepseek.com/v1"}},
		{name: "mock", cfg: config.LLM{Provider: config.ProviderMock}, mock: true},
		{name: "unknown", cfg: config.LLM{Provider: "claude"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := buildClient(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildClient: %v", err)
			}
			if _, isMock := c.(generator.MockClient); isMock != tc.mock {
				t.Fatalf("client type %T", c)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[float64]string{0: "-", -1: "-", 5.4: "0:05", 61.6: "1:02", 3600: "60:00"}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderEpisodes(t *testing.T) {
	out := renderEpisodes([]episode.Episode{{
		Title:         "A very long episode title that keeps going well past the column",
		Author:        "Ada",
		VoiceType:     "nova",
		AudioDuration: 75,
		Views:         12,
		CreatedAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}})
	for _, want := range []string{"Title", "Ada", "nova", "1:15", "12", "2026-03-01", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEpisodesFooterSumsViews(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	out := renderEpisodes([]episode.Episode{
		{Title: "One", Author: "Ada", VoiceType: "nova", Views: 7, CreatedAt: created},
		{Title: "Two", Author: "Bob", VoiceType: "echo", Views: 5, CreatedAt: created},
	})
	for _, want := range []string{"2 episodes", "12", "-"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
