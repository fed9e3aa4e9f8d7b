// Package security gates every filesystem and pattern-matching operation
// the analyzer performs on behalf of semi-trusted callers.
//
// # Overview
//
// This package implements the application-level sandbox boundary:
//   - Path traversal attacks (CWE-22), including Unicode-confusable and
//     mixed-separator variants
//   - Null-byte path smuggling (CWE-158)
//   - Symlink and junction/reparse-point escapes (CWE-59)
//   - Catastrophic regex backtracking (CWE-1333)
//
// It complements OS-level file permissions; it does not replace them.
//
// # Components
//
// Normalizer: pure mapping from a raw path string to a canonical,
// platform-neutral string. No filesystem I/O.
//
// Boundary: containment decisions against one or more allowed roots.
//
//	b := security.NewBoundary("/home/user/project", os.TempDir())
//	b.Contains("/home/user/project/src/main.go") // true
//	b.Contains("/home/user/project-evil/x")      // false
//
// Resolver: turns any user-supplied path (relative, absolute, foreign
// platform) into a canonical absolute path, with a bounded cache of
// resolutions.
//
// Regex: judges a pattern's backtracking risk before anything compiles
// or executes it. Defense in depth: callers still run matches under a
// wall-clock budget.
//
// Validator: orchestrates the above into the decision points tools call.
// Every decision is a Verdict{Allowed, Reason} rather than an error, so
// one malformed item in a batch cannot abort the batch.
//
//	v, _ := security.NewValidator(security.Config{Root: projectRoot})
//	if verdict := v.ValidateFilePath(userPath); !verdict.Allowed {
//	    return verdict.Reason // static phrase, never echoes the path
//	}
//
// # Design Philosophy
//
// All validators follow these principles:
//   - Fail-secure: when in doubt, deny access
//   - Fixed check order: cheap, pure string checks before any stat call
//   - Static rejection reasons: the validator must not become an
//     information-disclosure channel, so reasons never interpolate the
//     rejected path
//   - Deterministic: identical inputs always produce identical verdicts,
//     which is what makes the shared cache sound
//
// # Platform Behavior
//
// OS-specific behavior (Windows 8.3 short names, junctions, POSIX mount
// aliases) sits behind the PlatformOps interface. HostOps() selects the
// host implementation at startup; tests inject fakes.
//
// # Error Handling
//
// Validators intentionally both log and return verdicts. This is a
// deliberate exception to the "handle errors once" rule: security events
// require an audit trail (via logging) AND must propagate the denial to
// callers. The raw rejected path may appear in server-side logs only.
package security
