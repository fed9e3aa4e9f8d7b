package security

import (
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Regex pattern limits. The repetition ceiling sits below Go's own parser
// limit (1000) so an oversized bound is reported as a safety rejection,
// not a parse error.
const (
	maxPatternLength   = 4096
	maxRepetitionBound = 256
)

// repetitionBound scans literal {n} / {n,} / {n,m} bounds in the raw
// pattern before parsing.
var repetitionBound = regexp.MustCompile(`\{(\d+)(?:,(\d*))?\}`)

// Regex judges a pattern's backtracking and resource risk without ever
// executing it. The check is defense-in-depth, not a guarantee: callers
// must still run matches under a wall-clock budget.
type Regex struct{}

// NewRegex creates a regex safety checker.
func NewRegex() *Regex {
	return &Regex{}
}

// Validate checks a pattern in fixed order: raw-byte and length limits,
// literal repetition bounds, syntax parse, backtracking-shape analysis,
// final compile. A compile failure is reported distinctly from a safety
// rejection; "invalid" and "dangerous" are different caller decisions.
func (c *Regex) Validate(pattern string) Verdict {
	if pattern == "" {
		return deny(reasonRegexEmpty)
	}
	if len(pattern) > maxPatternLength {
		return deny(reasonRegexTooLong)
	}
	if strings.ContainsRune(pattern, 0) {
		return deny(reasonRegexNullByte)
	}
	if !utf8.ValidString(pattern) {
		return deny(reasonRegexCompile)
	}

	// Bound check happens before parsing: a{1000000} must be a safety
	// verdict even though the parser would also reject it.
	for _, m := range repetitionBound.FindAllStringSubmatch(pattern, -1) {
		for _, digits := range m[1:] {
			if digits == "" {
				continue
			}
			bound, err := strconv.Atoi(digits)
			if err != nil || bound > maxRepetitionBound {
				return deny(reasonRegexBound)
			}
		}
	}

	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return deny(reasonRegexCompile)
	}

	if reason := findUnsafeQuantifier(re); reason != "" {
		return deny(reason)
	}

	if _, err := regexp.Compile(pattern); err != nil {
		return deny(reasonRegexCompile)
	}
	return allow()
}

// findUnsafeQuantifier walks the parse tree looking for the canonical
// catastrophic-backtracking shapes: an unbounded quantifier whose operand
// contains another unbounded quantifier ((X+)+, (X*)*, (X+)*), can match
// empty, or is an alternation with overlapping branch first-sets
// ((X|XY)+). Returns "" when no shape is found.
func findUnsafeQuantifier(re *syntax.Regexp) string {
	if isUnboundedQuantifier(re) {
		inner := unwrapCaptures(re.Sub[0])
		switch {
		case containsUnboundedQuantifier(inner):
			return reasonRegexNested
		case canMatchEmpty(inner):
			return reasonRegexEmptyGroup
		case inner.Op == syntax.OpAlternate && branchesOverlap(inner):
			return reasonRegexOverlap
		}
	}
	for _, sub := range re.Sub {
		if reason := findUnsafeQuantifier(sub); reason != "" {
			return reason
		}
	}
	return ""
}

func isUnboundedQuantifier(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus:
		return true
	case syntax.OpRepeat:
		return re.Max < 0
	default:
		return false
	}
}

func unwrapCaptures(re *syntax.Regexp) *syntax.Regexp {
	for re.Op == syntax.OpCapture && len(re.Sub) == 1 {
		re = re.Sub[0]
	}
	return re
}

func containsUnboundedQuantifier(re *syntax.Regexp) bool {
	if isUnboundedQuantifier(re) {
		return true
	}
	for _, sub := range re.Sub {
		if containsUnboundedQuantifier(sub) {
			return true
		}
	}
	return false
}

// canMatchEmpty reports whether the subexpression can match the empty
// string. Zero-width assertions count as empty matches.
func canMatchEmpty(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpEmptyMatch,
		syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return true
	case syntax.OpLiteral:
		return len(re.Rune) == 0
	case syntax.OpStar, syntax.OpQuest:
		return true
	case syntax.OpRepeat:
		return re.Min == 0 || canMatchEmpty(re.Sub[0])
	case syntax.OpPlus, syntax.OpCapture:
		return canMatchEmpty(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !canMatchEmpty(sub) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if canMatchEmpty(sub) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// branchesOverlap reports whether two alternation branches can start with
// the same rune, the ambiguity that makes (X|XY)+ exponential. Branches
// with an undetermined first-set are treated as non-overlapping; the
// check flags known-bad shapes rather than proving safety.
func branchesOverlap(alt *syntax.Regexp) bool {
	sets := make([][]rune, len(alt.Sub))
	known := make([]bool, len(alt.Sub))
	for i, sub := range alt.Sub {
		sets[i], known[i] = firstRanges(sub)
	}
	for i := 0; i < len(sets); i++ {
		if !known[i] {
			continue
		}
		for j := i + 1; j < len(sets); j++ {
			if known[j] && rangesIntersect(sets[i], sets[j]) {
				return true
			}
		}
	}
	return false
}

// firstRanges computes the set of runes a subexpression can start with,
// as inclusive [lo, hi] pairs. The second return is false when the set
// cannot be determined.
func firstRanges(re *syntax.Regexp) ([]rune, bool) {
	switch re.Op {
	case syntax.OpLiteral:
		if len(re.Rune) == 0 {
			return nil, true
		}
		return []rune{re.Rune[0], re.Rune[0]}, true
	case syntax.OpCharClass:
		return re.Rune, true
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return []rune{0, utf8.MaxRune}, true
	case syntax.OpCapture, syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		return firstRanges(re.Sub[0])
	case syntax.OpConcat:
		var union []rune
		for _, sub := range re.Sub {
			set, ok := firstRanges(sub)
			if !ok {
				return nil, false
			}
			union = append(union, set...)
			if !canMatchEmpty(sub) {
				return union, true
			}
		}
		return union, true
	case syntax.OpAlternate:
		var union []rune
		for _, sub := range re.Sub {
			set, ok := firstRanges(sub)
			if !ok {
				return nil, false
			}
			union = append(union, set...)
		}
		return union, true
	case syntax.OpEmptyMatch:
		return nil, true
	default:
		return nil, false
	}
}

// rangesIntersect reports whether two [lo, hi] pair lists share any rune.
func rangesIntersect(a, b []rune) bool {
	for i := 0; i+1 < len(a); i += 2 {
		for j := 0; j+1 < len(b); j += 2 {
			if a[i] <= b[j+1] && b[j] <= a[i+1] {
				return true
			}
		}
	}
	return false
}
