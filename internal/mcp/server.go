package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/report"
)

// Server exposes the reporting engine as MCP tools.
type Server struct {
	reports *report.Service
	client  productive.Client
	mcp     *mcp.Server
}

// NewServer creates the MCP server and registers every tool.
func NewServer(reports *report.Service, version string) *Server {
	s := &Server{
		reports: reports,
		client:  reports.Client(),
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "sprint-pulse",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the server over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}
