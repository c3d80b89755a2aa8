package assistant

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// answerPolicy keeps the formatting tags the model is asked to use and
// strips everything else, attributes included.
func answerPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "strong", "em", "ul", "ol", "li", "h1", "h2", "h3", "h4", "h5", "h6", "br")
	return p
}

// stripCodeFence removes a ```html fence some models wrap their answer in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "html")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
