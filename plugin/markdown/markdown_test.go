package markdown

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text unchanged",
			input:    "I always buy the cheapest option.",
			expected: "I always buy the cheapest option.",
		},
		{
			name:     "inline formatting stripped",
			input:    "I **never** eat _spicy_ food.",
			expected: "I never eat spicy food.",
		},
		{
			name:     "heading and paragraph become lines",
			input:    "# Shopping notes\n\nPrefers quality over price.",
			expected: "Shopping notes\nPrefers quality over price.",
		},
		{
			name:     "list items become lines",
			input:    "- buys refurbished\n- reads reviews first",
			expected: "buys refurbished\nreads reviews first",
		},
		{
			name:     "code blocks dropped",
			input:    "My budget script:\n\n```\nbudget = 100\n```\n\nI track every expense.",
			expected: "My budget script:\nI track every expense.",
		},
		{
			name:     "inline code dropped",
			input:    "I run `make lunch` every day.",
			expected: "I run  every day.",
		},
		{
			name:     "link keeps label only",
			input:    "I order from [my grocery store](https://example.com) weekly.",
			expected: "I order from my grocery store weekly.",
		},
		{
			name:     "soft line break becomes space",
			input:    "I am allergic\nto peanuts.",
			expected: "I am allergic to peanuts.",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single tag",
			input:    "Planning meals for the week #health",
			expected: []string{"health"},
		},
		{
			name:     "deduplicated and sorted",
			input:    "#Shopping deals today #budget and more #shopping",
			expected: []string{"budget", "shopping"},
		},
		{
			name:     "tags inside code ignored",
			input:    "Style notes `#fff` and ```\n#comment\n``` but #design counts",
			expected: []string{"design"},
		},
		{
			name:     "numeric-only token is not a tag",
			input:    "Issue #42 is unrelated",
			expected: []string{},
		},
		{
			name:     "no tags",
			input:    "Nothing to see here",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHashtags(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractHashtags(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
