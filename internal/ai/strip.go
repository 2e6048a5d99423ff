package ai

import (
	"regexp"
	"strings"
)

var (
	reHTMLTag  = regexp.MustCompile(`<[^>]+>`)
	reMarkdown = regexp.MustCompile(`[*_#]{1,3}|` + "```[a-z]*")
	reBlanks   = regexp.MustCompile(`\n{3,}`)
)

// StripFormatting removes HTML tags and markdown decoration from model or
// historical message content so only plain text is replayed or displayed.
func StripFormatting(s string) string {
	s = reHTMLTag.ReplaceAllString(s, "")
	s = reMarkdown.ReplaceAllString(s, "")
	s = reBlanks.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
