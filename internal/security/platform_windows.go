//go:build windows

package security

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// HostOps returns the PlatformOps implementation for the build host.
func HostOps() PlatformOps {
	return WindowsOps{}
}

// WindowsOps implements PlatformOps using Win32 path queries.
type WindowsOps struct{}

// Windows reports true.
func (WindowsOps) Windows() bool { return true }

// ExpandShortName expands a legacy 8.3 short name via GetLongPathName.
// Degrades to the input unchanged on any failure (missing file, access
// denied, unsupported volume).
func (WindowsOps) ExpandShortName(path string) string {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return path
	}

	buf := make([]uint16, windows.MAX_PATH)
	n, err := windows.GetLongPathName(p, &buf[0], uint32(len(buf)))
	if err != nil {
		return path
	}
	if int(n) > len(buf) {
		// Path longer than MAX_PATH; retry with the reported size.
		buf = make([]uint16, n)
		n, err = windows.GetLongPathName(p, &buf[0], uint32(len(buf)))
		if err != nil || int(n) > len(buf) {
			return path
		}
	}
	return windows.UTF16ToString(buf[:n])
}

// ReparsePoint reports whether the path carries FILE_ATTRIBUTE_REPARSE_POINT
// (junctions, mount points, symlinks). Degrades to false when the
// attributes cannot be read.
func (WindowsOps) ReparsePoint(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
}

// Resolve follows symlinks and junctions via filepath.EvalSymlinks.
func (WindowsOps) Resolve(path string) (string, error) {
	return filepath.EvalSymlinks(path) //nolint:wrapcheck // thin OS shim
}
