package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/koopa0/codescope/internal/cache"
)

// Resolver turns user-supplied paths (relative, absolute, foreign
// platform) into canonical absolute paths. Resolutions are cached in the
// shared store's resolved-path namespace keyed by (raw, root); a hit
// returns without touching the filesystem.
type Resolver struct {
	root     string
	norm     *Normalizer
	boundary *Boundary
	store    *cache.Store
}

// NewResolver creates a Resolver rooted at root (may be empty: relative
// inputs then resolve against the working directory). A nil store
// disables resolution caching; a nil ops selects the host platform.
func NewResolver(root string, ops PlatformOps, store *cache.Store) *Resolver {
	if root != "" {
		root = filepath.Clean(root)
	}
	return &Resolver{
		root:     root,
		norm:     NewNormalizer(ops),
		boundary: NewBoundary(root),
		store:    store,
	}
}

// Root returns the configured project root, or "" when unset.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns the canonical absolute path for raw. Absolute inputs
// are normalized and returned without existence checks; existence
// belongs to callers that need it. Relative inputs are joined to the
// project root, or the working directory when no root is configured.
func (r *Resolver) Resolve(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(raw, 0) {
		return "", ErrNullByte
	}

	if r.store != nil {
		if hit, ok := r.store.ResolvedPath(raw, r.root); ok {
			return hit, nil
		}
	}

	input := raw
	if r.IsRelative(raw) {
		base := r.root
		if base == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("resolving working directory: %w", err)
			}
			base = cwd
		}
		input = base + string(filepath.Separator) + raw
	}

	resolved, err := r.norm.Normalize(input)
	if err != nil {
		return "", err
	}

	if r.store != nil {
		r.store.SetResolvedPath(raw, resolved, r.root)
	}
	return resolved, nil
}

// IsRelative is a pure syntactic check: a path is relative when it is
// neither separator-rooted nor drive-letter prefixed.
func (r *Resolver) IsRelative(p string) bool {
	if p == "" {
		return true
	}
	if hasDrivePrefix(p) {
		return false
	}
	return !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, `\`)
}

// RelativePath rewrites an absolute path relative to the project root.
// Fails on non-absolute input. Input on a different root or drive than
// the project root is returned unchanged.
func (r *Resolver) RelativePath(abs string) (string, error) {
	if r.IsRelative(abs) {
		return "", fmt.Errorf("%w: path is not absolute", ErrInvalidInput)
	}
	if r.root == "" {
		return abs, nil
	}

	// A path on a different drive than the root can never be made
	// relative; pass it through unchanged.
	if !strings.EqualFold(driveOf(abs), driveOf(r.root)) {
		return abs, nil
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		// Different drive or incompatible root: pass through unchanged.
		return abs, nil //nolint:nilerr // pass-through is the contract
	}
	return rel, nil
}

// driveOf returns the drive-letter prefix of p, or "" for POSIX paths.
func driveOf(p string) string {
	if hasDrivePrefix(p) {
		return p[:2]
	}
	return ""
}

// ValidatePath resolves raw and requires containment in the project
// root. Returns the safe absolute path. With no root configured only
// resolution (and its null-byte rejection) applies.
func (r *Resolver) ValidatePath(raw string) (string, error) {
	resolved, err := r.Resolve(raw)
	if err != nil {
		return "", err
	}
	if r.boundary.Configured() && !r.boundary.Contains(resolved) {
		return "", ErrOutsideProject
	}
	return resolved, nil
}
