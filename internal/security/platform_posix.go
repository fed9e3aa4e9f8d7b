//go:build !windows

package security

// HostOps returns the PlatformOps implementation for the build host.
func HostOps() PlatformOps {
	return PosixOps{}
}
