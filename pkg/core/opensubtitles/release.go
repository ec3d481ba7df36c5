package opensubtitles

import (
	"fmt"
	"strings"

	ptn "github.com/razsteinmetz/go-ptn"
)

// releaseTitleQuery reduces a scene release name such as
// "The.Matrix.1999.1080p.BluRay.x264-GROUP" to "The Matrix 1999".
// Text that does not parse to a title is returned unchanged.
func releaseTitleQuery(text string) string {
	parsed, err := ptn.Parse(text)
	if err != nil {
		return text
	}
	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return text
	}
	if parsed.Year > 0 {
		return fmt.Sprintf("%s %d", title, parsed.Year)
	}
	return title
}
