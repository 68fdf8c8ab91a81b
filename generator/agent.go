package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Agent 负责校验输入、调用生成服务并检查返回结果。
// Agent 自身不保存状态，也不做重试。
type Agent struct {
	client Client
}

func NewAgent(client Client) (*Agent, error) {
	if client == nil {
		return nil, errors.New("generation client is required")
	}
	return &Agent{client: client}, nil
}

// Generate produces the raw asset for req. A zero-length payload is a
// failure even when the remote call itself succeeded.
func (a *Agent) Generate(ctx context.Context, req Request) (Asset, error) {
	op := "generate " + string(req.Modality)
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Asset{}, newError(KindInvalidInput, op, errors.New("prompt is empty"))
	}

	var (
		data []byte
		err  error
	)
	switch req.Modality {
	case ModalityAudio:
		voice, verr := ParseVoice(string(req.Voice))
		if verr != nil {
			return Asset{}, newError(KindInvalidInput, op, verr)
		}
		data, err = a.client.Speech(ctx, prompt, voice)
	case ModalityImage:
		if req.Voice != "" {
			return Asset{}, newError(KindInvalidInput, op, errors.New("voice is only valid for audio"))
		}
		data, err = a.client.Image(ctx, prompt)
	default:
		return Asset{}, newError(KindInvalidInput, op, fmt.Errorf("unknown modality %q", req.Modality))
	}
	if err != nil {
		return Asset{}, wrap(op, err)
	}
	if len(data) == 0 {
		return Asset{}, newError(KindEmptyResult, op, errors.New("service returned no data"))
	}
	return Asset{Data: data, MIMEType: req.Modality.MIMEType()}, nil
}

// Enhance asks the text model for an improved version of text.
func (a *Agent) Enhance(ctx context.Context, text string, modality Modality) (string, error) {
	op := "enhance " + string(modality)
	if strings.TrimSpace(text) == "" {
		return "", newError(KindInvalidInput, op, errors.New("prompt is empty"))
	}
	raw, err := a.client.Complete(ctx, BuildEnhancePrompt(text, modality))
	if err != nil {
		return "", wrap(op, err)
	}
	out, err := PostProcessEnhanced(raw)
	if err != nil {
		return "", newError(KindEmptyResult, op, err)
	}
	return out, nil
}

func wrap(op string, err error) error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	return newError(KindOf(err), op, err)
}
