package openssl

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"
)

// defaultExpected lists the stderr openssl prints on success for actions
// that report success there.
var defaultExpected = map[Action]string{
	"cms.verify":   "verification successful",
	"genrsa":       "generating",
	"pkcs12":       "mac verified ok",
	"req.new":      "generating",
	"req.verify":   "verify ok",
	"rsa":          "writing rsa key",
	"smime.verify": "verification successful",
	"x509.req":     "signature ok",
}

// Patterns maps actions to the expected start of their stderr. Matching is
// case-insensitive. A Patterns value is immutable once built.
type Patterns struct {
	source   map[Action]string
	compiled map[Action]*regexp.Regexp
}

var defaultPatterns = sync.OnceValue(func() *Patterns {
	p, err := buildPatterns(defaultExpected)
	if err != nil {
		panic(err)
	}
	return p
})

// DefaultPatterns returns the built-in expected-pattern table.
func DefaultPatterns() *Patterns {
	return defaultPatterns()
}

// CompilePattern compiles an expected pattern the way Patterns does:
// case-insensitive and anchored at the start of the text.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return re, nil
}

func buildPatterns(src map[Action]string) (*Patterns, error) {
	p := &Patterns{
		source:   make(map[Action]string, len(src)),
		compiled: make(map[Action]*regexp.Regexp, len(src)),
	}
	for action, pattern := range src {
		re, err := CompilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", action, err)
		}
		p.source[action] = pattern
		p.compiled[action] = re
	}
	return p, nil
}

// With returns a copy of p with overrides applied. An empty pattern removes
// the action from the table, disabling the stderr check for it.
func (p *Patterns) With(overrides map[string]string) (*Patterns, error) {
	src := make(map[Action]string)
	if p != nil {
		maps.Copy(src, p.source)
	}
	for action, pattern := range overrides {
		if pattern == "" {
			delete(src, Action(action))
			continue
		}
		src[Action(action)] = pattern
	}
	return buildPatterns(src)
}

// Lookup returns the compiled pattern registered for action.
func (p *Patterns) Lookup(action Action) (*regexp.Regexp, bool) {
	if p == nil {
		return nil, false
	}
	re, ok := p.compiled[action]
	return re, ok
}

// Source returns the uncompiled pattern registered for action.
func (p *Patterns) Source(action Action) string {
	if p == nil {
		return ""
	}
	return p.source[action]
}

// Actions returns the registered actions in sorted order.
func (p *Patterns) Actions() []Action {
	if p == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(p.source))
}

// Classify decides whether an openssl run succeeded.
//
// A non-zero exit code always fails. With exit code zero, non-empty stderr
// fails only when the action has a registered pattern that stderr does not
// match. The returned *Error carries stderr as its message.
func Classify(action Action, exitCode int, stderr string, patterns *Patterns) error {
	if exitCode != 0 {
		return &Error{Action: action, Kind: ErrorExit, Code: exitCode, Message: stderr}
	}
	if stderr == "" {
		return nil
	}
	re, ok := patterns.Lookup(action)
	if !ok || re.MatchString(stderr) {
		return nil
	}
	return &Error{Action: action, Kind: ErrorPattern, Code: 0, Message: stderr}
}
