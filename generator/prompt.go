package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的一轮请求：系统指令加用户文本。
type Prompt struct {
	System string
	User   string
}

// BuildEnhancePrompt 根据资源类型生成提示词改写请求。
func BuildEnhancePrompt(text string, modality Modality) Prompt {
	var sb strings.Builder
	sb.WriteString("You improve prompts for an AI podcast studio. Return only the improved prompt, with no preamble, quotes or explanation.\n")
	sb.WriteString("Requirements:\n")
	switch modality {
	case ModalityAudio:
		sb.WriteString("- The text will be read aloud by a text-to-speech voice as a podcast episode.\n")
		sb.WriteString("- Use natural spoken sentences, clear transitions and punctuation that guides pacing.\n")
		sb.WriteString("- Spell out abbreviations, symbols and numbers the way a host would say them.\n")
		sb.WriteString("- Avoid markdown, lists, headings and stage directions.\n")
	default:
		sb.WriteString("- The text will drive an image model that renders a square podcast thumbnail.\n")
		sb.WriteString("- Describe the subject, composition, lighting, colour palette and art style.\n")
		sb.WriteString("- Keep one clear focal point that reads well at small sizes.\n")
		sb.WriteString("- Do not ask for any text, letters or logos in the image.\n")
	}
	sb.WriteString("- Keep the original intent and language of the user's prompt.\n")

	return Prompt{
		System: sb.String(),
		User:   fmt.Sprintf("Prompt to improve:\n%s", strings.TrimSpace(text)),
	}
}
