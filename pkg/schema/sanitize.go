package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Sanitize strips markup from every human readable string in the schema
// (titles, descriptions, labels, option labels). Identifiers, option values
// and regex rules are left untouched. Schemas authored by the assistant pass
// through here before they are stored or rendered.
func Sanitize(s FormSchema) FormSchema {
	out := s.Clone()
	out.Title = sanitizeText(out.Title)
	out.Description = sanitizeText(out.Description)
	for i := range out.Steps {
		step := &out.Steps[i]
		step.Title = sanitizeText(step.Title)
		for j := range step.Fields {
			field := &step.Fields[j]
			field.Label = sanitizeText(field.Label)
			for k := range field.Options {
				field.Options[k].Label = sanitizeText(field.Options[k].Label)
			}
		}
	}
	return out
}

// maxSanitizePasses bounds the decode and sanitize loop for nested entity
// encodings such as "&amp;lt;b&amp;gt;".
const maxSanitizePasses = 8

// sanitizeText decodes entities before each sanitize pass so encoded markup
// is stripped too. The result is bluemonday output: entity escaped text.
func sanitizeText(raw string) string {
	current := strings.TrimSpace(raw)
	for i := 0; i < maxSanitizePasses && current != ""; i++ {
		next := strings.TrimSpace(textSanitizer().Sanitize(html.UnescapeString(current)))
		if next == current {
			break
		}
		current = next
	}
	return current
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
