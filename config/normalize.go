package config

import "strings"

func (c *Config) normalize() {
	d := Default()
	c.ServerAddr = strings.TrimSpace(c.ServerAddr)
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	if c.DataPath == "" {
		c.DataPath = d.DataPath
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = d.RequestTimeoutSeconds
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.SpeechModel == "" {
		c.LLM.SpeechModel = d.LLM.SpeechModel
	}
	if c.LLM.ImageModel == "" {
		c.LLM.ImageModel = d.LLM.ImageModel
	}
	if c.LLM.ImageSize == "" {
		c.LLM.ImageSize = d.LLM.ImageSize
	}

	c.Storage.Kind = strings.ToLower(strings.TrimSpace(c.Storage.Kind))
	if c.Storage.Kind == "" {
		c.Storage.Kind = StorageLocal
	}
	if c.Media.FFprobePath == "" {
		c.Media.FFprobePath = d.Media.FFprobePath
	}
	if c.Limits.GeneratePerMinute <= 0 {
		c.Limits.GeneratePerMinute = d.Limits.GeneratePerMinute
	}
	if c.Limits.Burst <= 0 {
		c.Limits.Burst = d.Limits.Burst
	}
	if c.Limits.SessionIdleMinutes <= 0 {
		c.Limits.SessionIdleMinutes = d.Limits.SessionIdleMinutes
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
