package openssl

import (
	"errors"
	"slices"
	"testing"
)

func TestDefaultPatternsTable(t *testing.T) {
	want := map[Action]string{
		"cms.verify":   "verification successful",
		"genrsa":       "generating",
		"pkcs12":       "mac verified ok",
		"req.new":      "generating",
		"req.verify":   "verify ok",
		"rsa":          "writing rsa key",
		"smime.verify": "verification successful",
		"x509.req":     "signature ok",
	}

	p := DefaultPatterns()
	if got := p.Actions(); len(got) != len(want) {
		t.Fatalf("Actions() = %q, want %d entries", got, len(want))
	}
	for action, pattern := range want {
		if got := p.Source(action); got != pattern {
			t.Errorf("Source(%q) = %q, want %q", action, got, pattern)
		}
	}
	if !slices.IsSorted(p.Actions()) {
		t.Errorf("Actions() not sorted: %q", p.Actions())
	}
}

func TestClassify(t *testing.T) {
	p := DefaultPatterns()

	tests := []struct {
		name     string
		action   Action
		exit     int
		stderr   string
		wantKind ErrorKind // 0 means success
	}{
		{"matching stderr", "req.new", 0, "Generating a 2048 bit RSA private key\n", 0},
		{"matching ignores case", "cms.verify", 0, "VERIFICATION SUCCESSFUL\n", 0},
		{"empty stderr", "req.verify", 0, "", 0},
		{"unlisted action with noise", "x509", 0, "some warning\n", 0},
		{"mismatch", "rsa", 0, "unable to load key\n", ErrorPattern},
		{"match must be at start", "genrsa", 0, "warning: generating\n", ErrorPattern},
		{"nonzero exit with matching stderr", "pkcs12", 1, "MAC verified OK\n", ErrorExit},
		{"nonzero exit unlisted", "x509", 2, "", ErrorExit},
		{"negative exit", "rsa", -1, "", ErrorExit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.action, tt.exit, tt.stderr, p)
			if tt.wantKind == 0 {
				if err != nil {
					t.Fatalf("Classify() = %v, want nil", err)
				}
				return
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("Classify() = %v, want *Error", err)
			}
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", e.Kind, tt.wantKind)
			}
			if e.Code != tt.exit {
				t.Errorf("Code = %d, want %d", e.Code, tt.exit)
			}
			if e.Error() != tt.stderr {
				t.Errorf("Error() = %q, want the full stderr %q", e.Error(), tt.stderr)
			}
			if e.Action != tt.action {
				t.Errorf("Action = %q, want %q", e.Action, tt.action)
			}
		})
	}
}

func TestClassifyNilPatterns(t *testing.T) {
	if err := Classify("rsa", 0, "anything", nil); err != nil {
		t.Errorf("Classify() with nil patterns = %v, want nil", err)
	}
}

func TestPatternsWith(t *testing.T) {
	p, err := DefaultPatterns().With(map[string]string{
		"ca":     "using configuration",
		"rsa":    "",
		"genrsa": "generating|writing",
	})
	if err != nil {
		t.Fatalf("With() error: %v", err)
	}

	if _, ok := p.Lookup("rsa"); ok {
		t.Error("empty override should remove rsa")
	}
	if err := Classify("ca", 0, "Using configuration from /etc/ssl/openssl.cnf", p); err != nil {
		t.Errorf("ca should match added pattern: %v", err)
	}
	if err := Classify("genrsa", 0, "writing key", p); err != nil {
		t.Errorf("genrsa should match alternation: %v", err)
	}
	if _, ok := DefaultPatterns().Lookup("rsa"); !ok {
		t.Error("With() must not modify the receiver")
	}
}

func TestPatternsWithInvalidRegex(t *testing.T) {
	if _, err := DefaultPatterns().With(map[string]string{"ca": "("}); err == nil {
		t.Error("With() should reject an invalid regex")
	}
}

func TestNilPatterns(t *testing.T) {
	var p *Patterns
	if _, ok := p.Lookup("rsa"); ok {
		t.Error("nil Patterns should have no entries")
	}
	if p.Actions() != nil || p.Source("rsa") != "" {
		t.Error("nil Patterns should be empty")
	}
	built, err := p.With(map[string]string{"rsa": "writing"})
	if err != nil {
		t.Fatalf("With() on nil error: %v", err)
	}
	if _, ok := built.Lookup("rsa"); !ok {
		t.Error("With() on nil should build a table")
	}
}

func TestErrorIs(t *testing.T) {
	sentinels := map[ErrorKind]error{
		ErrorExit:       ErrNonZeroExit,
		ErrorPattern:    ErrPatternMismatch,
		ErrorSpawn:      ErrSpawn,
		ErrorTerminated: ErrTerminated,
	}

	for kind, sentinel := range sentinels {
		err := error(&Error{Kind: kind})
		if !errors.Is(err, sentinel) {
			t.Errorf("%s error should match %v", kind, sentinel)
		}
		for otherKind, other := range sentinels {
			if got := errors.Is(err, other); got != (kind == otherKind) {
				t.Errorf("errors.Is(%s error, %v) = %v", kind, other, got)
			}
		}
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(&Error{Kind: ErrorExit, Code: 3}); got != 3 {
		t.Errorf("ExitCode() = %d, want 3", got)
	}
	if got := ExitCode(errors.New("plain")); got != 0 {
		t.Errorf("ExitCode(plain) = %d, want 0", got)
	}
	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}
}
