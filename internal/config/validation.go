package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"slices"
)

// validLogLevels are the accepted log.level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Project root validation
	if c.ProjectRoot == "" {
		return fmt.Errorf("%w: project_root cannot be empty", ErrInvalidProjectRoot)
	}
	if !filepath.IsAbs(c.ProjectRoot) {
		return fmt.Errorf("%w: project_root must be absolute, got %q",
			ErrInvalidProjectRoot, c.ProjectRoot)
	}

	// 2. Extra allowed roots must also be absolute
	for _, root := range c.AllowedRoots {
		if root == "" {
			return fmt.Errorf("%w: allowed_roots entries cannot be empty", ErrInvalidAllowedRoot)
		}
		if !filepath.IsAbs(root) {
			return fmt.Errorf("%w: allowed_roots entries must be absolute, got %q",
				ErrInvalidAllowedRoot, root)
		}
	}

	// 3. Cache capacity range
	if c.CacheCapacity < 1 || c.CacheCapacity > MaxCacheCapacity {
		return fmt.Errorf("%w: must be between 1 and %d, got %d",
			ErrInvalidCacheCapacity, MaxCacheCapacity, c.CacheCapacity)
	}

	// 4. File size cap range
	if c.MaxFileSize < 1 || c.MaxFileSize > MaxAllowedFileSize {
		return fmt.Errorf("%w: must be between 1 and %d bytes, got %d",
			ErrInvalidMaxFileSize, MaxAllowedFileSize, c.MaxFileSize)
	}

	// 5. History path, when set, must be absolute
	if c.History.Path != "" && !filepath.IsAbs(c.History.Path) {
		return fmt.Errorf("%w: history.path must be absolute, got %q",
			ErrInvalidHistoryPath, c.History.Path)
	}

	// 6. Log level
	if !slices.Contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidLogLevel, c.Log.Level, validLogLevels)
	}

	return nil
}

// ValidateServe validates the additional settings serve mode needs.
// Call after Validate.
func (c *Config) ValidateServe() error {
	if c == nil {
		return ErrConfigNil
	}

	// Listen address must be host:port with a usable port
	host, port, err := net.SplitHostPort(c.Server.Addr)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidServerAddr, c.Server.Addr, err)
	}
	if host == "" || port == "" {
		return fmt.Errorf("%w: %q must include host and port", ErrInvalidServerAddr, c.Server.Addr)
	}

	if c.Server.RateBurst < 1 || c.Server.RateBurst > MaxRateBurst {
		return fmt.Errorf("%w: must be between 1 and %d, got %d",
			ErrInvalidRateBurst, MaxRateBurst, c.Server.RateBurst)
	}

	// Origins must be scheme://host[:port] with no path or wildcard
	for _, origin := range c.Server.CORSOrigins {
		u, err := url.Parse(origin)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidCORSOrigin, origin, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: %q must use http or https", ErrInvalidCORSOrigin, origin)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrInvalidCORSOrigin, origin)
		}
		if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
			return fmt.Errorf("%w: %q must not carry a path or query", ErrInvalidCORSOrigin, origin)
		}
	}

	return nil
}
