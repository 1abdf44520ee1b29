package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderDiff writes a unified diff with syntax highlighting. Unknown themes fall back to
// chroma's default style.
func RenderDiff(w io.Writer, diff string, theme string) error {
	if diff == "" {
		return nil
	}
	if !strings.HasSuffix(diff, "\n") {
		diff += "\n"
	}
	if err := quick.Highlight(w, diff, "diff", "terminal256", theme); err != nil {
		return fmt.Errorf("failed to highlight diff: %w", err)
	}
	return nil
}
