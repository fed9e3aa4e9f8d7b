package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/codescope/internal/tools"
)

// registerTools registers all analysis and validation tools to the MCP server.
// Tools: readFile, listFiles, getFileInfo, globFiles, searchContent,
// languageStats, validatePath
func (s *Server) registerTools() error {
	// readFile
	readFileSchema, err := jsonschema.For[tools.ReadFileInput](nil)
	if err != nil {
		return fmt.Errorf("schema for readFile: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "readFile",
		Description: "Read the complete content of a text file inside the project.",
		InputSchema: readFileSchema,
	}, s.ReadFile)

	// listFiles
	listFilesSchema, err := jsonschema.For[tools.ListFilesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for listFiles: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "listFiles",
		Description: "List all files and subdirectories in a project directory.",
		InputSchema: listFilesSchema,
	}, s.ListFiles)

	// getFileInfo
	getFileInfoSchema, err := jsonschema.For[tools.FileInfoInput](nil)
	if err != nil {
		return fmt.Errorf("schema for getFileInfo: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "getFileInfo",
		Description: "Get metadata about a file, including its detected language.",
		InputSchema: getFileInfoSchema,
	}, s.GetFileInfo)

	// globFiles
	globFilesSchema, err := jsonschema.For[tools.GlobFilesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for globFiles: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "globFiles",
		Description: "Find files matching a glob pattern, with ** support.",
		InputSchema: globFilesSchema,
	}, s.GlobFiles)

	// searchContent
	searchContentSchema, err := jsonschema.For[tools.SearchContentInput](nil)
	if err != nil {
		return fmt.Errorf("schema for searchContent: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "searchContent",
		Description: "Search source files for a regular expression pattern.",
		InputSchema: searchContentSchema,
	}, s.SearchContent)

	// languageStats
	languageStatsSchema, err := jsonschema.For[tools.LanguageStatsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for languageStats: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "languageStats",
		Description: "Scan a directory tree and report per-language file and line counts.",
		InputSchema: languageStatsSchema,
	}, s.LanguageStats)

	// validatePath
	validatePathSchema, err := jsonschema.For[tools.ValidatePathInput](nil)
	if err != nil {
		return fmt.Errorf("schema for validatePath: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "validatePath",
		Description: "Check whether a path passes security validation without touching it.",
		InputSchema: validatePathSchema,
	}, s.ValidatePath)

	return nil
}

// ReadFile handles the readFile MCP tool call.
func (s *Server) ReadFile(_ context.Context, _ *mcp.CallToolRequest, input tools.ReadFileInput) (*mcp.CallToolResult, any, error) {
	result := s.kit.ReadFile(input)
	return resultToMCP(result, s.logger), nil, nil
}

// ListFiles handles the listFiles MCP tool call.
func (s *Server) ListFiles(_ context.Context, _ *mcp.CallToolRequest, input tools.ListFilesInput) (*mcp.CallToolResult, any, error) {
	result := s.kit.ListFiles(input)
	return resultToMCP(result, s.logger), nil, nil
}

// GetFileInfo handles the getFileInfo MCP tool call.
func (s *Server) GetFileInfo(_ context.Context, _ *mcp.CallToolRequest, input tools.FileInfoInput) (*mcp.CallToolResult, any, error) {
	result := s.kit.FileInfo(input)
	return resultToMCP(result, s.logger), nil, nil
}

// GlobFiles handles the globFiles MCP tool call.
func (s *Server) GlobFiles(_ context.Context, _ *mcp.CallToolRequest, input tools.GlobFilesInput) (*mcp.CallToolResult, any, error) {
	result := s.kit.GlobFiles(input)
	return resultToMCP(result, s.logger), nil, nil
}

// SearchContent handles the searchContent MCP tool call.
func (s *Server) SearchContent(ctx context.Context, _ *mcp.CallToolRequest, input tools.SearchContentInput) (*mcp.CallToolResult, any, error) {
	result := s.kit.SearchContent(ctx, input)
	return resultToMCP(result, s.logger), nil, nil
}

// LanguageStats handles the languageStats MCP tool call.
func (s *Server) LanguageStats(ctx context.Context, _ *mcp.CallToolRequest, input tools.LanguageStatsInput) (*mcp.CallToolResult, any, error) {
	result := s.kit.LanguageStats(ctx, input)
	return resultToMCP(result, s.logger), nil, nil
}

// ValidatePath handles the validatePath MCP tool call.
func (s *Server) ValidatePath(_ context.Context, _ *mcp.CallToolRequest, input tools.ValidatePathInput) (*mcp.CallToolResult, any, error) {
	result := s.kit.ValidatePath(input)
	return resultToMCP(result, s.logger), nil, nil
}
