package security

import (
	"path/filepath"
	"slices"
	"strings"
)

// Boundary decides whether a resolved absolute path is contained in any
// of the configured roots. Zero roots means no containment is enforced
// (only the string-level checks apply upstream). It performs no
// filesystem I/O.
type Boundary struct {
	roots []string
}

// NewBoundary creates a Boundary over the given roots. Empty strings are
// dropped; the remaining roots are lexically cleaned.
func NewBoundary(roots ...string) *Boundary {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		if r == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(r))
	}
	return &Boundary{roots: cleaned}
}

// Configured reports whether at least one root is set.
func (b *Boundary) Configured() bool {
	return len(b.roots) > 0
}

// Roots returns a copy of the configured roots.
func (b *Boundary) Roots() []string {
	return slices.Clone(b.roots)
}

// Contains reports whether abs equals a configured root or is a
// descendant of one. The prefix check requires a separator after the
// root, so "/project-evil" never matches root "/project".
func (b *Boundary) Contains(abs string) bool {
	for _, root := range b.roots {
		if abs == root {
			return true
		}
		if strings.HasPrefix(abs, root+"/") || strings.HasPrefix(abs, root+`\`) {
			return true
		}
	}
	return false
}
