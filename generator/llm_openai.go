package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultChatModel   = "gpt-4o-mini"
	defaultSpeechModel = "tts-1"
	defaultImageModel  = "dall-e-3"
	defaultImageSize   = "1024x1024"
)

// OpenAIClient implements Client using the official openai-go SDK.
// A client built without an API key is still usable: every call fails
// with ErrMissingCredential so the caller can report it.
type OpenAIClient struct {
	Model       string
	SpeechModel string
	ImageModel  string
	ImageSize   string
	Opts        []option.RequestOption
	hasKey      bool
}

func NewOpenAIClientFromConfig(cfg *LLMSettings) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	c := &OpenAIClient{
		Model:       orDefault(cfg.Model, defaultChatModel),
		SpeechModel: orDefault(cfg.SpeechModel, defaultSpeechModel),
		ImageModel:  orDefault(cfg.ImageModel, defaultImageModel),
		ImageSize:   orDefault(cfg.ImageSize, defaultImageSize),
		hasKey:      cfg.APIKey != "",
	}
	if c.hasKey {
		c.Opts = append(c.Opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		c.Opts = append(c.Opts, option.WithBaseURL(cfg.BaseURL))
	}
	return c, nil
}

func (o *OpenAIClient) client() (openai.Client, error) {
	if !o.hasKey {
		return openai.Client{}, ErrMissingCredential
	}
	return openai.NewClient(o.Opts...), nil
}

func (o *OpenAIClient) Speech(ctx context.Context, text string, voice Voice) ([]byte, error) {
	client, err := o.client()
	if err != nil {
		return nil, newError(KindMissingCredential, "openai speech", err)
	}
	resp, err := client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(o.SpeechModel),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, newError(KindUpstreamFailure, "openai speech", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindUpstreamFailure, "openai speech", fmt.Errorf("read body: %w", err))
	}
	return data, nil
}

func (o *OpenAIClient) Image(ctx context.Context, prompt string) ([]byte, error) {
	client, err := o.client()
	if err != nil {
		return nil, newError(KindMissingCredential, "openai image", err)
	}
	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(o.ImageModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(o.ImageSize),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, newError(KindUpstreamFailure, "openai image", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, newError(KindEmptyResult, "openai image", errors.New("openai: empty image data"))
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, newError(KindUpstreamFailure, "openai image", fmt.Errorf("decode image: %w", err))
	}
	return data, nil
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client, err := o.client()
	if err != nil {
		return "", newError(KindMissingCredential, "openai chat", err)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt.System),
		openai.UserMessage(prompt.User),
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: msgs,
	})
	if err != nil {
		return "", newError(KindUpstreamFailure, "openai chat", err)
	}
	if len(resp.Choices) == 0 {
		return "", newError(KindEmptyResult, "openai chat", errors.New("openai: empty choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
