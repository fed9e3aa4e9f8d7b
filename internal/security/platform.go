package security

import "path/filepath"

// PlatformOps abstracts the OS-specific pieces of path handling so the
// Normalizer and Resolver stay platform neutral and testable. HostOps()
// selects the host implementation; tests may inject a fake.
//
// Implementations must degrade to "not special" rather than fail hard:
// a missing OS facility (short-name expansion, reparse queries) returns
// the input unchanged or false, never an error.
type PlatformOps interface {
	// Windows reports whether paths follow Windows semantics
	// (drive letters, backslash separators, junctions).
	Windows() bool

	// ExpandShortName expands a legacy 8.3 short name (PROGRA~1) to its
	// long form. Returns the path unchanged when expansion is
	// unavailable or fails.
	ExpandShortName(path string) string

	// ReparsePoint reports whether the path is a junction or other
	// reparse point. Always false on POSIX.
	ReparsePoint(path string) bool

	// Resolve follows symlinks to the real on-disk path. Errors when the
	// path does not exist; callers treat that as "nothing to resolve".
	Resolve(path string) (string, error)
}

// PosixOps implements PlatformOps with POSIX semantics.
type PosixOps struct{}

// Windows reports false.
func (PosixOps) Windows() bool { return false }

// ExpandShortName is the identity on POSIX; 8.3 names do not exist.
func (PosixOps) ExpandShortName(path string) string { return path }

// ReparsePoint reports false; POSIX has symlinks, handled via Resolve.
func (PosixOps) ReparsePoint(string) bool { return false }

// Resolve follows symlinks via filepath.EvalSymlinks.
func (PosixOps) Resolve(path string) (string, error) {
	return filepath.EvalSymlinks(path) //nolint:wrapcheck // thin OS shim
}
