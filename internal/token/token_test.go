package token

import (
	"regexp"
	"testing"
)

func TestGenerate_Format(t *testing.T) {
	tok := Generate()
	if !regexp.MustCompile("^[0-9a-f]{64}$").MatchString(tok) {
		t.Errorf("token %q is not 64 lowercase hex characters", tok)
	}
}

func TestGenerate_Unique(t *testing.T) {
	const numTokens = 100
	seen := make(map[string]struct{}, numTokens)
	for range numTokens {
		tok := Generate()
		if _, exists := seen[tok]; exists {
			t.Fatalf("duplicate token generated: %s", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		got, want string
		expected  bool
	}{
		{"abc", "abc", true},
		{"abd", "abc", false},
		{"ab", "abc", false},
		{"", "abc", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		if got := Equal(tt.got, tt.want); got != tt.expected {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.got, tt.want, got, tt.expected)
		}
	}
}
