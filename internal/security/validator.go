package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/log"
)

// Free-text and glob input limits.
const (
	// DefaultMaxInputLength is the SanitizeInput length ceiling.
	DefaultMaxInputLength = 1024

	// DefaultMaxGlobLength is the glob pattern length ceiling.
	DefaultMaxGlobLength = 512
)

// Config holds the dependencies for a Validator.
type Config struct {
	// Root is the project root: the sandbox boundary. May be empty, in
	// which case only the string-level checks apply.
	Root string

	// AllowedRoots are additional containment roots beyond the project
	// root (e.g., an OS temp directory for scratch output).
	AllowedRoots []string

	// Ops selects platform behavior. Nil selects the host platform.
	Ops PlatformOps

	// Store receives verdict and resolution caching. Nil disables caching.
	Store *cache.Store

	// Logger receives security events. Nil discards them.
	Logger log.Logger

	// MaxInputLength overrides DefaultMaxInputLength when positive.
	MaxInputLength int

	// MaxGlobLength overrides DefaultMaxGlobLength when positive.
	MaxGlobLength int
}

// Validator orchestrates the Resolver, Boundary, and Regex checker into
// the decision points tools call. All Validate* methods return a Verdict
// rather than an error: untrusted-input problems are data, not faults,
// so one malformed item in a batch cannot abort the batch.
type Validator struct {
	root     string
	boundary *Boundary
	resolver *Resolver
	regex    *Regex
	ops      PlatformOps
	store    *cache.Store
	logger   log.Logger
	maxInput int
	maxGlob  int
}

// NewValidator creates a Validator. The project root, when set, must be
// an absolute path.
func NewValidator(cfg Config) (*Validator, error) {
	ops := cfg.Ops
	if ops == nil {
		ops = HostOps()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	// Roots pass through the same Normalizer as every checked path, so
	// an alias-spelled root (/private/tmp/X on macOS) lands in the same
	// canonical space containment compares against.
	normalizer := NewNormalizer(ops)

	root := cfg.Root
	if root != "" {
		if !filepath.IsAbs(root) && !hasDrivePrefix(root) {
			return nil, fmt.Errorf("%w: project root must be absolute", ErrInvalidInput)
		}
		var err error
		root, err = normalizer.Normalize(root)
		if err != nil {
			return nil, fmt.Errorf("%w: project root: %v", ErrInvalidInput, err)
		}
	}

	roots := make([]string, 0, len(cfg.AllowedRoots)+1)
	if root != "" {
		roots = append(roots, root)
	}
	for _, extra := range cfg.AllowedRoots {
		if !filepath.IsAbs(extra) && !hasDrivePrefix(extra) {
			return nil, fmt.Errorf("%w: allowed root must be absolute", ErrInvalidInput)
		}
		normalized, err := normalizer.Normalize(extra)
		if err != nil {
			return nil, fmt.Errorf("%w: allowed root: %v", ErrInvalidInput, err)
		}
		roots = append(roots, normalized)
	}

	maxInput := cfg.MaxInputLength
	if maxInput <= 0 {
		maxInput = DefaultMaxInputLength
	}
	maxGlob := cfg.MaxGlobLength
	if maxGlob <= 0 {
		maxGlob = DefaultMaxGlobLength
	}

	return &Validator{
		root:     root,
		boundary: NewBoundary(roots...),
		resolver: NewResolver(root, ops, cfg.Store),
		regex:    NewRegex(),
		ops:      ops,
		store:    cfg.Store,
		logger:   logger,
		maxInput: maxInput,
		maxGlob:  maxGlob,
	}, nil
}

// Root returns the configured project root, or "" when unset.
func (v *Validator) Root() string {
	return v.root
}

// Resolver exposes the underlying path resolver for callers that need
// the safe absolute path rather than a bare verdict.
func (v *Validator) Resolver() *Resolver {
	return v.resolver
}

// ValidateFilePath decides whether a file path may be accessed. Checks
// run in fixed order: emptiness, null bytes in the raw string (before
// any normalization, so a smuggled second path cannot hide after one),
// traversal after Unicode-confusable folding, foreign drive letters,
// containment, and symlink escapes. Internal panics become a generic
// verdict, never a crash of the host process.
func (v *Validator) ValidateFilePath(path string) (verdict Verdict) {
	defer v.recoverVerdict("path", &verdict)

	if cached, ok := v.cachedVerdict("file", path); ok {
		return cached
	}
	verdict = v.checkPath(path, true)
	v.storeVerdict("file", path, verdict)
	v.audit("file path validation", path, verdict)
	return verdict
}

// ValidateFilePathIn validates a path against an explicit base directory
// instead of the project root. The base itself must pass containment
// first. An empty base falls back to ValidateFilePath.
func (v *Validator) ValidateFilePathIn(base, path string) (verdict Verdict) {
	defer v.recoverVerdict("path", &verdict)

	if base == "" {
		return v.ValidateFilePath(path)
	}
	if bv := v.checkPath(base, false); !bv.Allowed {
		v.audit("base path validation", base, bv)
		return bv
	}
	if !v.resolver.IsRelative(path) {
		return v.ValidateFilePath(path)
	}
	// Plain concatenation, not filepath.Join: Join would collapse a
	// ".." before the traversal check sees it.
	return v.ValidateFilePath(strings.TrimRight(base, `/\`) + "/" + path)
}

// ValidateDirPath decides whether a directory path may be accessed.
// Reuses the file-path checks, then requires existence-and-directory
// when mustExist is set. Existence-dependent verdicts are not cached.
func (v *Validator) ValidateDirPath(path string, mustExist bool) (verdict Verdict) {
	defer v.recoverVerdict("path", &verdict)

	if !mustExist {
		if cached, ok := v.cachedVerdict("dir", path); ok {
			return cached
		}
	}

	verdict = v.checkPath(path, true)
	if verdict.Allowed && mustExist {
		info, err := os.Stat(v.mustResolve(path))
		switch {
		case err != nil:
			verdict = deny(reasonDirMissing)
		case !info.IsDir():
			verdict = deny(reasonNotDirectory)
		}
	}

	if !mustExist {
		v.storeVerdict("dir", path, verdict)
	}
	v.audit("directory path validation", path, verdict)
	return verdict
}

// ValidateRegexPattern judges a regex pattern's backtracking risk.
// A compile failure and a safety rejection carry distinct reasons.
func (v *Validator) ValidateRegexPattern(pattern string) (verdict Verdict) {
	defer v.recoverVerdict("regex", &verdict)

	verdict = v.regex.Validate(pattern)
	if !verdict.Allowed {
		v.logger.Warn("regex pattern rejected",
			"security_event", "regex_rejected",
			"reason", verdict.Reason,
		)
	}
	return verdict
}

// ValidateGlobPattern applies the glob-specific rule set: non-empty,
// bounded length, no parent traversal, no doubled separators, and
// syntactically valid doublestar syntax.
func (v *Validator) ValidateGlobPattern(pattern string) (verdict Verdict) {
	defer v.recoverVerdict("glob", &verdict)

	switch {
	case pattern == "":
		verdict = deny(reasonGlobEmpty)
	case len(pattern) > v.maxGlob:
		verdict = deny(reasonGlobTooLong)
	case strings.ContainsRune(pattern, 0):
		verdict = deny(reasonNullByte)
	case strings.Contains(foldConfusables(pattern), ".."):
		verdict = deny(reasonGlobTraversal)
	case strings.Contains(pattern, "//"), strings.Contains(pattern, `\\`):
		verdict = deny(reasonGlobDoubled)
	case !doublestar.ValidatePattern(pattern):
		verdict = deny(reasonGlobInvalid)
	default:
		verdict = allow()
	}

	if !verdict.Allowed {
		v.logger.Warn("glob pattern rejected",
			"security_event", "glob_rejected",
			"reason", verdict.Reason,
		)
	}
	return verdict
}

// SanitizeInput cleans free text for downstream display or storage:
// null and control characters and the HTML-significant characters
// < > " ' are stripped. Hard violations (over-length, non-UTF-8) are
// errors, not silent truncation.
func (v *Validator) SanitizeInput(text string) (string, error) {
	if len(text) > v.maxInput {
		return "", fmt.Errorf("%w: limit %d characters", ErrInputTooLong, v.maxInput)
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: not valid UTF-8 text", ErrInvalidInput)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		switch r {
		case '<', '>', '"', '\'':
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// IsSafePath is shorthand for ValidateFilePath(path).Allowed.
func (v *Validator) IsSafePath(path string) bool {
	return v.ValidateFilePath(path).Allowed
}

// checkPath runs the ordered string and containment checks shared by the
// file and directory entry points. followLinks additionally applies the
// symlink and reparse-point escape checks.
func (v *Validator) checkPath(path string, followLinks bool) Verdict {
	// (1) type/emptiness
	if strings.TrimSpace(path) == "" {
		return deny(reasonEmptyPath)
	}

	// (2) null byte in the RAW string, before any normalization
	if strings.ContainsRune(path, 0) {
		return deny(reasonNullByte)
	}

	// (3) traversal after confusable folding
	folded := foldConfusables(path)
	if hasTraversal(folded) {
		return deny(reasonTraversal)
	}

	// (4) foreign drive letter
	if hasDrivePrefix(folded) && !v.ops.Windows() {
		return deny(reasonDriveLetter)
	}

	// (5) resolve and check containment
	resolved, err := v.resolver.Resolve(path)
	if err != nil {
		return deny(reasonEmptyPath)
	}
	if v.boundary.Configured() && !v.boundary.Contains(resolved) {
		return deny(reasonOutsideProject)
	}

	// (6) symlink and reparse-point escapes
	if followLinks {
		if reason := v.checkLinks(resolved); reason != "" {
			return deny(reason)
		}
	}
	return allow()
}

// checkLinks rejects paths that are symlinks, resolve through a symlink
// to an out-of-boundary target, or pass through a reparse point pointing
// outside the boundary. A path that does not exist yet has no links to
// follow and passes.
func (v *Validator) checkLinks(resolved string) string {
	if info, err := os.Lstat(resolved); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return reasonSymlink
	}

	if real, err := v.ops.Resolve(resolved); err == nil && real != resolved {
		// Re-normalize: EvalSymlinks may reintroduce a mount alias
		// (/var -> /private/var) that containment must see collapsed.
		realNorm, nerr := NewNormalizer(v.ops).Normalize(real)
		if nerr != nil {
			return reasonSymlinkEscape
		}
		if v.boundary.Configured() && !v.boundary.Contains(realNorm) {
			return reasonSymlinkEscape
		}
	}

	// Ancestor reparse points (Windows junctions). ReparsePoint is
	// always false on POSIX, where EvalSymlinks above already covers
	// ancestors.
	for dir := filepath.Dir(resolved); ; {
		if v.boundary.Configured() && !v.boundary.Contains(dir) {
			break
		}
		if v.ops.ReparsePoint(dir) {
			target, err := v.ops.Resolve(dir)
			if err != nil {
				return reasonSymlinkEscape
			}
			if v.boundary.Configured() && !v.boundary.Contains(target) {
				return reasonSymlinkEscape
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// mustResolve returns the resolved path for an input checkPath already
// accepted; resolution cannot fail at that point.
func (v *Validator) mustResolve(path string) string {
	resolved, err := v.resolver.Resolve(path)
	if err != nil {
		return path
	}
	return resolved
}

func (v *Validator) cachedVerdict(kind, path string) (Verdict, bool) {
	if v.store == nil {
		return Verdict{}, false
	}
	cv, ok := v.store.Verdict(kind, path, v.root)
	if !ok {
		return Verdict{}, false
	}
	return Verdict{Allowed: cv.Allowed, Reason: cv.Reason}, true
}

func (v *Validator) storeVerdict(kind, path string, verdict Verdict) {
	if v.store == nil {
		return
	}
	v.store.SetVerdict(kind, path, cache.Verdict{
		Allowed: verdict.Allowed,
		Reason:  verdict.Reason,
	}, v.root)
}

// audit logs denials for the security audit trail. The raw path appears
// in server-side logs only; callers see the static reason.
func (v *Validator) audit(event, path string, verdict Verdict) {
	if verdict.Allowed {
		return
	}
	v.logger.Warn(event+" rejected",
		"security_event", "path_rejected",
		"reason", verdict.Reason,
		"path", path,
	)
}

// recoverVerdict converts an internal panic into a generic denial. The
// validator must never take the host process down over bad input.
func (v *Validator) recoverVerdict(kind string, verdict *Verdict) {
	if r := recover(); r != nil {
		v.logger.Error("validation panic recovered", "kind", kind, "panic", r)
		*verdict = deny("Validation error: " + kind)
	}
}

// hasTraversal reports whether p contains a ".." segment adjacent to a
// separator, with both separator styles unified first. A bare ".." also
// counts.
func hasTraversal(p string) bool {
	s := strings.ReplaceAll(p, `\`, "/")
	if s == ".." {
		return true
	}
	return strings.Contains(s, "../") || strings.Contains(s, "/..")
}
