// Package mcp exposes the console's operations as MCP tools, so an AI
// assistant can read the live alert window, pull incident details, and
// trigger the same backend actions an operator can.
package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/feed"
	"github.com/netsentinel/sentryview/internal/history"
	"github.com/netsentinel/sentryview/internal/resolver"
)

// Server wires the sentryview tools onto an MCP stdio server.
type Server struct {
	window *feed.Window
	res    *resolver.Resolver
	api    *client.Client
	hist   *history.Store // nil when history is disabled
	logger *slog.Logger
	srv    *mcp.Server
}

// NewServer creates the MCP server and registers the tools.
func NewServer(window *feed.Window, res *resolver.Resolver, api *client.Client, hist *history.Store, logger *slog.Logger) *Server {
	s := &Server{
		window: window,
		res:    res,
		api:    api,
		hist:   hist,
		logger: logger,
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "sentryview",
		Version: "0.1.0",
	}, nil)

	srv.AddTool(listAlertsTool(), s.handleListAlerts)
	srv.AddTool(getIncidentTool(), s.handleGetIncident)
	srv.AddTool(triggerSimulationTool(), s.handleTriggerSimulation)
	srv.AddTool(blockIPTool(), s.handleBlockIP)

	s.srv = srv
	return s
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.srv.Run(ctx, &mcp.StdioTransport{})
}

// Underlying returns the wrapped MCP server (used by in-process tests).
func (s *Server) Underlying() *mcp.Server {
	return s.srv
}
