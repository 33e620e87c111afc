package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsMaliciousContent(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"plain text", "Classic Abaya with embroidery", false},
		{"script tag", `<script>alert(1)</script>`, true},
		{"mixed case script", `<ScRiPt>alert(1)</sCrIpT>`, true},
		{"javascript protocol", "javascript:alert(1)", true},
		{"event handler", `<img onerror=alert(1)>`, true},
		{"iframe", `<iframe src="x">`, true},
		{"eval call", "eval(document.cookie)", true},
		{"punctuation", "Soft, breathable - 2 colours!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsMaliciousContent(tt.value))
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"untouched", "Premium prayer mat", "Premium prayer mat"},
		{"strips script block", "before<script>alert(1)</script>after", "beforeafter"},
		{"strips tags", "<b>bold</b> claim", "bold claim"},
		{"strips js protocol", "javascript:alert(1)", "alert(1)"},
		{"strips event attr", "x onload= y", "x  y"},
		{"trims whitespace", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.value))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
}

func TestValidSizeLabel(t *testing.T) {
	assert.True(t, ValidSizeLabel("M"))
	assert.True(t, ValidSizeLabel("52"))
	assert.True(t, ValidSizeLabel("One Size"))
	assert.True(t, ValidSizeLabel("58/60"))
	assert.False(t, ValidSizeLabel(""))
	assert.False(t, ValidSizeLabel("this label is far too long"))
	assert.False(t, ValidSizeLabel("<script>"))
	assert.False(t, ValidSizeLabel("M;DROP"))
}
