// Package mcp implements the Model Context Protocol server for Compendium.
//
// The MCP server exposes a read-only view of the catalog: tools to list and
// fetch entities, and resources addressing individual entities by URI. Every
// payload uses the same JSON shapes as the HTTP API, detail URLs included.
package mcp

import (
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/compendium/internal/represent"
	"github.com/ashita-ai/compendium/internal/service/catalog"
)

// Server wraps the MCP server with Compendium's catalog service.
type Server struct {
	mcpServer *mcpserver.MCPServer
	catalog   *catalog.Service
	linker    represent.Linker
	views     map[string]view
	logger    *slog.Logger
}

// New creates and configures an MCP server with all resources and tools.
// baseURL is the public origin used for detail URLs.
func New(svc *catalog.Service, baseURL string, logger *slog.Logger, version string) *Server {
	s := &Server{
		catalog: svc,
		linker:  represent.NewLinker(baseURL),
		logger:  logger,
	}
	s.views = s.catalogViews()

	s.mcpServer = mcpserver.NewMCPServer(
		"compendium",
		version,
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithToolCapabilities(false),
	)

	s.registerResources()
	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}
