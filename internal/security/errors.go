package security

import "errors"

var (
	// ErrEmptyPath indicates an empty or blank path input.
	ErrEmptyPath = errors.New("empty path")

	// ErrNullByte indicates a null byte embedded in the input.
	ErrNullByte = errors.New("null byte in input")

	// ErrTraversal indicates a parent-directory traversal attempt.
	ErrTraversal = errors.New("path traversal detected")

	// ErrOutsideProject indicates a path outside every allowed root.
	ErrOutsideProject = errors.New("path outside the allowed project directory")

	// ErrSymlink indicates a symlink or reparse point crossing the boundary.
	ErrSymlink = errors.New("symlink crosses the project boundary")

	// ErrDriveLetter indicates a Windows drive-letter path on a non-Windows host.
	ErrDriveLetter = errors.New("drive-letter path not supported on this platform")

	// ErrRegexCompile indicates a pattern the host engine cannot compile.
	ErrRegexCompile = errors.New("invalid regular expression")

	// ErrRegexUnsafe indicates a pattern with catastrophic-backtracking risk.
	ErrRegexUnsafe = errors.New("unsafe regular expression")

	// ErrInputTooLong indicates free-text input over the sanitization ceiling.
	ErrInputTooLong = errors.New("input exceeds maximum length")

	// ErrInvalidInput indicates malformed input (wrong shape, bad encoding).
	ErrInvalidInput = errors.New("invalid input")
)

// Kind classifies a rejection for programmatic handling. The string form
// is stable and appears in logs and API payloads.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNullByte           Kind = "null_byte"
	KindTraversal          Kind = "traversal"
	KindBoundaryViolation  Kind = "boundary_violation"
	KindSymlinkViolation   Kind = "symlink_violation"
	KindDriveLetter        Kind = "drive_letter"
	KindRegexCompile       Kind = "regex_compile"
	KindRegexUnsafe        Kind = "regex_unsafe"
	KindSanitizationLength Kind = "sanitization_length"
)

// Classify maps a sentinel error to its Kind. Unknown errors classify as
// InvalidInput.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrNullByte):
		return KindNullByte
	case errors.Is(err, ErrTraversal):
		return KindTraversal
	case errors.Is(err, ErrOutsideProject):
		return KindBoundaryViolation
	case errors.Is(err, ErrSymlink):
		return KindSymlinkViolation
	case errors.Is(err, ErrDriveLetter):
		return KindDriveLetter
	case errors.Is(err, ErrRegexCompile):
		return KindRegexCompile
	case errors.Is(err, ErrRegexUnsafe):
		return KindRegexUnsafe
	case errors.Is(err, ErrInputTooLong):
		return KindSanitizationLength
	default:
		return KindInvalidInput
	}
}

// Static rejection reasons. These are the only strings a caller ever sees
// for a denial; none of them may interpolate the rejected path.
const (
	reasonEmptyPath      = "path is empty"
	reasonNullByte       = "path contains a null byte"
	reasonTraversal      = "path traversal detected"
	reasonDriveLetter    = "drive-letter paths are not supported on this platform"
	reasonOutsideProject = "path is outside the allowed project directory"
	reasonSymlink        = "symbolic links are not allowed"
	reasonSymlinkEscape  = "path resolves outside the allowed project directory"
	reasonDirMissing     = "directory does not exist"
	reasonNotDirectory   = "path is not a directory"

	reasonGlobEmpty     = "glob pattern is empty"
	reasonGlobTooLong   = "glob pattern exceeds maximum length"
	reasonGlobTraversal = "glob pattern contains parent-directory traversal"
	reasonGlobDoubled   = "glob pattern contains doubled separators"
	reasonGlobInvalid   = "invalid glob pattern"

	reasonRegexEmpty      = "pattern is empty"
	reasonRegexTooLong    = "pattern exceeds maximum length"
	reasonRegexNullByte   = "pattern contains a null byte"
	reasonRegexBound      = "repetition bound exceeds the configured ceiling"
	reasonRegexCompile    = "invalid regular expression"
	reasonRegexNested     = "nested unbounded quantifiers risk catastrophic backtracking"
	reasonRegexEmptyGroup = "unbounded quantifier applied to a group that can match empty"
	reasonRegexOverlap    = "unbounded quantifier over overlapping alternation branches"
)

// Verdict is the outcome of a validation. Reason is empty when Allowed.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func allow() Verdict {
	return Verdict{Allowed: true}
}

func deny(reason string) Verdict {
	return Verdict{Reason: reason}
}
