package generator

import (
	"context"
	"strings"
)

// MockClient 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockClient struct{}

func (MockClient) Speech(_ context.Context, text string, voice Voice) ([]byte, error) {
	// ID3 header followed by the text, enough for players to sniff the type.
	var sb strings.Builder
	sb.WriteString("ID3")
	sb.WriteString(string(voice))
	sb.WriteString(":")
	sb.WriteString(text)
	return []byte(sb.String()), nil
}

func (MockClient) Image(_ context.Context, prompt string) ([]byte, error) {
	data := []byte("\x89PNG\r\n\x1a\n")
	return append(data, prompt...), nil
}

func (MockClient) Complete(_ context.Context, prompt Prompt) (string, error) {
	text := strings.TrimSpace(prompt.User)
	if text == "" {
		return "", nil
	}
	return text + " (enhanced)", nil
}
