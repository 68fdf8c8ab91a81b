package generator

import (
	"errors"
	"strings"
)

// PostProcessEnhanced 清理模型输出：去掉代码块与包裹引号。
func PostProcessEnhanced(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = stripFence(text)
	text = stripQuotes(text)
	if text == "" {
		return "", errors.New("model returned empty prompt")
	}
	return text, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// drop an optional language tag on the opening fence line
	if i := strings.IndexByte(inner, '\n'); i >= 0 && !strings.ContainsAny(inner[:i], " \t") {
		inner = inner[i+1:]
	}
	return strings.TrimSpace(inner)
}

func stripQuotes(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := s[len(p[0]) : len(s)-len(p[1])]
			if !strings.Contains(inner, p[0]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}
