// Package validate holds the input sanitization helpers shared by the admin
// catalog endpoints. The helpers are pure string functions with documented
// contracts; request-shape validation lives on the handler structs.
package validate

import (
	"regexp"
	"strings"
)

var (
	// maliciousPattern detects script tags, inline event handlers, and other
	// HTML vectors that must never reach stored product text.
	maliciousPattern = regexp.MustCompile(`(?i)<script|</script|javascript:|onerror=|onload=|onclick=|eval\(|expression\(|<iframe|<object|<embed`)

	scriptBlockPattern = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	tagPattern         = regexp.MustCompile(`<.*?>`)
	jsProtocolPattern  = regexp.MustCompile(`(?i)javascript:`)
	eventAttrPattern   = regexp.MustCompile(`(?i)on\w+\s*=`)

	// sizeLabelPattern allows the label shapes sold in practice: numeric
	// sizes (50, 60), letter sizes (S, M, XL), and compounds like "One Size"
	// or "58/60".
	sizeLabelPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-+/.#()]+$`)
)

// ContainsMaliciousContent reports whether the value carries script or
// markup content that should reject the whole request rather than be
// silently stripped.
func ContainsMaliciousContent(value string) bool {
	return maliciousPattern.MatchString(value)
}

// Sanitize strips script blocks, residual tags, javascript: protocols, and
// inline event handler attributes, then trims surrounding whitespace.
func Sanitize(value string) string {
	value = scriptBlockPattern.ReplaceAllString(value, "")
	value = tagPattern.ReplaceAllString(value, "")
	value = jsProtocolPattern.ReplaceAllString(value, "")
	value = eventAttrPattern.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}

// Truncate caps the value at max bytes.
func Truncate(value string, max int) string {
	if len(value) > max {
		return value[:max]
	}
	return value
}

// ValidSizeLabel reports whether the label is a well-formed size label: at
// most 20 characters of letters, digits, and simple separators.
func ValidSizeLabel(label string) bool {
	if label == "" || len(label) > 20 {
		return false
	}
	if ContainsMaliciousContent(label) {
		return false
	}
	return sizeLabelPattern.MatchString(label)
}
