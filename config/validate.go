package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderMock:
	case ProviderDeepSeek:
		// DeepSeek 走 OpenAI 兼容接口，必须提供 base_url。
		if c.LLM.BaseURL == "" {
			errs = append(errs, errors.New("llm.base_url is required for provider deepseek"))
		}
	case "":
		errs = append(errs, errors.New("llm.provider is required"))
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q not supported", c.LLM.Provider))
	}

	switch c.Storage.Kind {
	case StorageLocal:
		if err := checkURL("public_base_url", c.PublicBaseURL); err != nil {
			errs = append(errs, err)
		}
	case StorageRemote:
		if err := checkURL("storage.upload_url", c.Storage.UploadURL); err != nil {
			errs = append(errs, err)
		}
		if err := checkURL("storage.resolve_url", c.Storage.ResolveURL); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("storage.kind %q must be local or remote", c.Storage.Kind))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

func checkURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s %q is not an absolute url", field, raw)
	}
	return nil
}
