// Package mcp exposes the tool kit over the Model Context Protocol.
// The server speaks JSON-RPC on the stdio transport; stdout carries
// protocol frames only, so all logging goes to stderr.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/tools"
)

// Server wraps the MCP SDK server and the tool kit.
type Server struct {
	mcpServer *mcp.Server
	kit       *tools.Kit
	logger    log.Logger
	name      string
	version   string
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Kit     *tools.Kit
	Logger  log.Logger
}

// NewServer creates an MCP server with all tools registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Kit == nil {
		return nil, fmt.Errorf("tool kit is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		kit:       cfg.Kit,
		logger:    logger,
		name:      cfg.Name,
		version:   cfg.Version,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// Run starts the MCP server on the given transport. Blocking; returns
// when the transport closes or ctx is canceled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}
