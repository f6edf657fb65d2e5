// Package sanitize strips active-content markup from untrusted request
// strings before they reach validation and storage. Ingestion-time
// sanitization is defense in depth; anything rendered as HTML downstream
// still has to be escaped there.
package sanitize

import "github.com/microcosm-cc/bluemonday"

type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes every HTML element and attribute from value.
func (s *Sanitizer) Clean(value string) string {
	return s.policy.Sanitize(value)
}
