package security

import (
	"strings"
	"testing"
)

func TestRegexValidateUnsafePatterns(t *testing.T) {
	c := NewRegex()

	// The canonical catastrophic-backtracking shapes.
	unsafe := []string{
		"(a+)+",
		"(a*)*",
		"(a+)*",
		"(a|ab)+",
		"(a|ab)*",
		"([a-z]+)+",
		"([a-z]*)*",
		"(a{1,}){1,}",
		"(\\d+)+$",
		"^(x+x+)+y$",
		"(()+)+",
	}

	for _, pattern := range unsafe {
		t.Run(pattern, func(t *testing.T) {
			verdict := c.Validate(pattern)
			if verdict.Allowed {
				t.Errorf("Validate(%q) allowed, want unsafe", pattern)
			}
			if verdict.Reason == reasonRegexCompile {
				t.Errorf("Validate(%q) reported compile failure, want safety rejection", pattern)
			}
		})
	}
}

func TestRegexValidateSafePatterns(t *testing.T) {
	c := NewRegex()

	safe := []string{
		"^[a-z]+$",
		"(a|b)+",
		"(ab)+",
		"foo.*bar",
		"^func \\w+\\(",
		"a{1,256}",
		"[0-9]{2,4}-[0-9]{2}",
		"(?i)todo|fixme",
		"^\\s*import\\s+",
	}

	for _, pattern := range safe {
		t.Run(pattern, func(t *testing.T) {
			if verdict := c.Validate(pattern); !verdict.Allowed {
				t.Errorf("Validate(%q) rejected: %s", pattern, verdict.Reason)
			}
		})
	}
}

func TestRegexValidateCompileFailure(t *testing.T) {
	c := NewRegex()

	invalid := []string{
		"[unclosed",
		"(unbalanced",
		"a{2,1}",
		"(?P<broken",
	}

	for _, pattern := range invalid {
		t.Run(pattern, func(t *testing.T) {
			verdict := c.Validate(pattern)
			if verdict.Allowed {
				t.Fatalf("Validate(%q) allowed", pattern)
			}
			// Compile failure must not be conflated with a safety rejection.
			if verdict.Reason != reasonRegexCompile {
				t.Errorf("Validate(%q) reason = %q, want %q", pattern, verdict.Reason, reasonRegexCompile)
			}
		})
	}
}

func TestRegexValidateRepetitionCeiling(t *testing.T) {
	c := NewRegex()

	verdict := c.Validate("a{1000000}")
	if verdict.Allowed {
		t.Fatal("a{1000000} allowed")
	}
	if verdict.Reason != reasonRegexBound {
		t.Errorf("reason = %q, want safety rejection %q", verdict.Reason, reasonRegexBound)
	}

	// Bounds at the ceiling are fine.
	if verdict := c.Validate("a{256}"); !verdict.Allowed {
		t.Errorf("a{256} rejected: %s", verdict.Reason)
	}
	if verdict := c.Validate("a{257}"); verdict.Allowed {
		t.Error("a{257} allowed, want rejection above ceiling")
	}
}

func TestRegexValidateLimits(t *testing.T) {
	c := NewRegex()

	if verdict := c.Validate(""); verdict.Allowed {
		t.Error("empty pattern allowed")
	}
	if verdict := c.Validate(strings.Repeat("a", maxPatternLength+1)); verdict.Allowed {
		t.Error("over-length pattern allowed")
	}
	if verdict := c.Validate("a\x00b"); verdict.Allowed {
		t.Error("null byte pattern allowed")
	}
}

func TestRegexValidateBracketQuantifierEquivalents(t *testing.T) {
	c := NewRegex()

	// Character-class variants of the nested-quantifier shape.
	for _, pattern := range []string{"([^x]+)+", "([\\w]+)*"} {
		if verdict := c.Validate(pattern); verdict.Allowed {
			t.Errorf("Validate(%q) allowed, want unsafe", pattern)
		}
	}
}
