package tools

import "github.com/koopa0/codescope/internal/security"

// Status indicates the outcome of a tool execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Error codes carried by Result.Error. Stable strings: API and MCP
// clients dispatch on them.
const (
	ErrCodeSecurity   = "SECURITY_VIOLATION"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeIO         = "IO_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// Error is the structured error payload inside a Result.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Result is the envelope every tool returns. Untrusted-input failures
// are Results with StatusError, never Go errors: one bad item must not
// abort a batch, and the envelope is what clients marshal.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *Error         `json:"error,omitempty"`
}

// securityResult builds the rejection envelope for a denied verdict.
// The message carries only the static reason, never the offending path.
func securityResult(verdict security.Verdict) Result {
	return Result{
		Status:  StatusError,
		Message: "Security validation failed",
		Error: &Error{
			Code:    ErrCodeSecurity,
			Message: verdict.Reason,
		},
	}
}

func notFoundResult(what string) Result {
	return Result{
		Status:  StatusError,
		Message: what + " not found",
		Error: &Error{
			Code:    ErrCodeNotFound,
			Message: what + " not found",
		},
	}
}

func ioResult(action string, err error) Result {
	return Result{
		Status:  StatusError,
		Message: "Failed to " + action,
		Error: &Error{
			Code:    ErrCodeIO,
			Message: action + ": " + err.Error(),
		},
	}
}

func validationResult(message string) Result {
	return Result{
		Status:  StatusError,
		Message: message,
		Error: &Error{
			Code:    ErrCodeValidation,
			Message: message,
		},
	}
}

func internalResult(err error) Result {
	return Result{
		Status:  StatusError,
		Message: "Internal error",
		Error: &Error{
			Code:    ErrCodeInternal,
			Message: err.Error(),
		},
	}
}

func successResult(message string, data map[string]any) Result {
	return Result{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}
