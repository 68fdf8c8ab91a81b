package generator

import "context"

// Client 抽象生成服务客户端，便于替换/Mock。
type Client interface {
	// Speech synthesises text with the given voice and returns mp3 bytes.
	Speech(ctx context.Context, text string, voice Voice) ([]byte, error)
	// Image renders a thumbnail for prompt and returns png bytes.
	Image(ctx context.Context, prompt string) ([]byte, error)
	// Complete runs a chat completion and returns the assistant text.
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	SpeechModel string
	ImageModel  string
	ImageSize   string
}
