package security

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a raw path string to a canonical, platform-neutral
// string. It is a pure function over strings: no filesystem I/O beyond
// the optional short-name expansion the PlatformOps provides.
type Normalizer struct {
	ops PlatformOps
}

// NewNormalizer creates a Normalizer. A nil ops selects the host platform.
func NewNormalizer(ops PlatformOps) *Normalizer {
	if ops == nil {
		ops = HostOps()
	}
	return &Normalizer{ops: ops}
}

// posixMountAliases are vendor mount prefixes that are transparent
// equivalents of a shorter canonical path. Only these exact prefixes are
// collapsed; everything else passes through untouched.
var posixMountAliases = []struct {
	prefix      string
	replacement string
}{
	{"/System/Volumes/Data", ""},
	{"/private/var", "/var"},
	{"/private/tmp", "/tmp"},
	{"/private/etc", "/etc"},
}

// Normalize returns the canonical form of raw. A null byte anywhere is a
// hard rejection: truncating at the null would let a second, hidden path
// through. Foreign-platform absolute paths (a drive-letter prefix on
// POSIX, a separator-rooted path on Windows) are resolved lexically only,
// never touching the filesystem.
func (n *Normalizer) Normalize(raw string) (string, error) {
	if strings.ContainsRune(raw, 0) {
		return "", ErrNullByte
	}
	if raw == "" {
		return "", ErrEmptyPath
	}

	if n.ops.Windows() {
		return n.normalizeWindows(raw), nil
	}
	return n.normalizePosix(raw), nil
}

func (n *Normalizer) normalizePosix(raw string) string {
	if hasDrivePrefix(raw) {
		return normalizeForeignWindows(raw)
	}
	return collapseMountAliases(filepath.Clean(raw))
}

// normalizeWindows cleans in forward-slash space, then restores
// backslashes, so the logic is independent of the build host and
// exercisable through a fake PlatformOps.
func (n *Normalizer) normalizeWindows(raw string) string {
	s := strings.ReplaceAll(raw, `\`, "/")

	if !hasDrivePrefix(s) {
		if strings.HasPrefix(s, "/") {
			// Separator-rooted with no drive letter: a foreign POSIX
			// absolute path. Lexical resolution only.
			return path.Clean(s)
		}
		return strings.ReplaceAll(path.Clean(s), "/", `\`)
	}

	drive := strings.ToUpper(s[:1]) + ":"
	rest := path.Clean(s[2:])
	switch rest {
	case ".", "/":
		rest = "/"
	}
	cleaned := drive + strings.ReplaceAll(rest, "/", `\`)
	return n.ops.ExpandShortName(cleaned)
}

// normalizeForeignWindows lexically resolves a drive-letter path seen on a
// POSIX host. Separators unify to forward slashes; the drive letter is
// uppercased; the filesystem is never consulted.
func normalizeForeignWindows(raw string) string {
	drive := strings.ToUpper(raw[:1]) + ":"
	rest := strings.ReplaceAll(raw[2:], `\`, "/")
	cleaned := path.Clean(rest)
	if cleaned == "." {
		cleaned = "/"
	}
	return drive + cleaned
}

// collapseMountAliases rewrites transparent vendor mount prefixes to
// their canonical equivalents.
func collapseMountAliases(p string) string {
	for _, alias := range posixMountAliases {
		if p == alias.prefix {
			if alias.replacement == "" {
				return "/"
			}
			return alias.replacement
		}
		if strings.HasPrefix(p, alias.prefix+"/") {
			return alias.replacement + p[len(alias.prefix):]
		}
	}
	return p
}

// hasDrivePrefix reports whether s starts with a Windows drive-letter
// pattern: exactly one ASCII letter followed by a colon.
func hasDrivePrefix(s string) bool {
	if len(s) < 2 || s[1] != ':' {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// foldConfusables applies NFKC normalization, folding fullwidth and other
// compatibility look-alikes (．／＼) to their ASCII forms. Run before the
// traversal check so confusable separators cannot hide a ".." segment.
// The enumerated fullwidth set is the tested minimum; NFKC covers more.
func foldConfusables(s string) string {
	return norm.NFKC.String(s)
}
