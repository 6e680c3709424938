package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizePolicy = bluemonday.StrictPolicy()

// Sanitize strips all HTML from user-provided profile text.
func Sanitize(input string) string {
	return sanitizePolicy.Sanitize(input)
}
