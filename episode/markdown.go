package episode

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// RenderDescription converts a markdown description to HTML. Raw HTML in
// the source is dropped by goldmark's default renderer.
func RenderDescription(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
