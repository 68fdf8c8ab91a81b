package generator

import (
	"fmt"
	"strings"
	"time"
)

// Modality 表示生成的资源类型（音频或封面图）。
type Modality string

const (
	ModalityAudio Modality = "audio"
	ModalityImage Modality = "image"
)

// ParseModality accepts "audio" or "image" in any case.
func ParseModality(s string) (Modality, error) {
	switch Modality(strings.ToLower(strings.TrimSpace(s))) {
	case ModalityAudio:
		return ModalityAudio, nil
	case ModalityImage:
		return ModalityImage, nil
	default:
		return "", fmt.Errorf("unknown modality %q", s)
	}
}

const (
	MIMETypeAudio = "audio/mpeg"
	MIMETypeImage = "image/png"
)

// MIMEType returns the fixed payload type produced for the modality.
func (m Modality) MIMEType() string {
	if m == ModalityAudio {
		return MIMETypeAudio
	}
	return MIMETypeImage
}

// FileName builds the timestamped name used when the payload is uploaded.
func (m Modality) FileName(t time.Time) string {
	if m == ModalityAudio {
		return fmt.Sprintf("podcast-%d.mp3", t.UnixMilli())
	}
	return fmt.Sprintf("thumbnail-%d.png", t.UnixMilli())
}

// Voice 语音合成支持的固定音色。
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceShimmer Voice = "shimmer"
	VoiceNova    Voice = "nova"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
)

// Voices lists the supported voices in display order.
var Voices = []Voice{VoiceAlloy, VoiceShimmer, VoiceNova, VoiceEcho, VoiceFable, VoiceOnyx}

// ParseVoice normalises s and reports whether it names a supported voice.
func ParseVoice(s string) (Voice, error) {
	v := Voice(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Voices {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("voice %q not supported", s)
}

// Request 单次生成请求；Voice 仅用于音频。
type Request struct {
	Modality Modality
	Prompt   string
	Voice    Voice
}

// Asset 是生成服务返回的原始数据，只存在于生成与上传之间。
type Asset struct {
	Data     []byte
	MIMEType string
}
