package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/tools"
)

// Error detail whitelist policy:
// - error_code: safe (controlled enum, e.g. "SECURITY_VIOLATION")
// - error_type: safe (controlled enum)
// - user_message: safe (user-facing message only)
// - request_id: safe (support correlation)
//
// Never expose stack traces, file paths, environment variables,
// internal IDs, or credentials.

// resultToMCP converts a tools.Result to mcp.CallToolResult.
func resultToMCP(result tools.Result, logger log.Logger) *mcp.CallToolResult {
	if logger == nil {
		logger = log.NewNop()
	}

	if result.Status == tools.StatusError {
		errorText := result.Message
		if result.Error != nil {
			errorText = fmt.Sprintf("[%s] %s", result.Error.Code, result.Error.Message)
			if result.Error.Details != nil {
				sanitized := sanitizeErrorDetails(result.Error.Details)
				if len(sanitized) > 0 {
					detailsJSON, err := json.Marshal(sanitized)
					if err != nil {
						logger.Warn("marshaling sanitized error details", "error", err)
						errorText += "\nDetails: (see server logs)"
					} else {
						errorText += fmt.Sprintf("\nDetails: %s", string(detailsJSON))
					}
				}

				// Full details stay server-side.
				logger.Debug("MCP error details", "details", result.Error.Details)
			}
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: errorText}},
			IsError: true,
		}
	}

	return dataToMCP(result.Data)
}

// dataToMCP converts arbitrary data to MCP text content via JSON marshaling.
// All data becomes JSON; clients parse it.
func dataToMCP(data any) *mcp.CallToolResult {
	if data == nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: ""}},
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "marshal error"}},
			IsError: true,
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}

// sanitizeErrorDetails extracts only whitelisted fields from error details.
func sanitizeErrorDetails(details map[string]any) map[string]any {
	safe := make(map[string]any)

	safeFields := map[string]bool{
		"error_code":   true,
		"error_type":   true,
		"user_message": true,
		"request_id":   true,
	}

	for key, val := range details {
		if safeFields[key] {
			safe[key] = val
		}
	}

	return safe
}
