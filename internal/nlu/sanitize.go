package nlu

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// Sanitize strips markup from an inbound utterance before classification.
// Chat gateways can deliver HTML fragments; the classifier and the slot
// guardrails should only ever see plain text.
func Sanitize(text string) string {
	clean := stripPolicy.Sanitize(text)
	return strings.TrimSpace(html.UnescapeString(clean))
}
