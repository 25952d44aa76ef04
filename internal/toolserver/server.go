// Package toolserver exposes the submission surface to agents as MCP tools
// served over SSE/HTTP. Hunt and review agents connect with --mcp-config and
// act through submit_finding, submit_dispute, mark_done and the read tools;
// every precondition stays inside the engine.
package toolserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/boneshq/bones/internal/engine"
)

// Version is the tool server version, matching the bones module.
const Version = "0.1.0"

// Server is the in-process MCP server for one game.
type Server struct {
	orch   *engine.Orchestrator
	gameID string
	mcp    *mcp.Server
	port   int
	srv    *http.Server
	ln     net.Listener
}

// NewServer creates a tool server bound to one game.
func NewServer(orch *engine.Orchestrator, gameID string, port int) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "bones",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		orch:   orch,
		gameID: gameID,
		mcp:    mcpServer,
		port:   port,
	}
	s.registerTools()
	return s
}

// registerTools registers the submission and read tools.
func (s *Server) registerTools() {
	s.registerSubmissionTools()
	s.registerReadTools()
}

// Start begins serving over SSE/HTTP on the configured port. It returns once
// the listener is accepting connections.
func (s *Server) Start(ctx context.Context) error {
	handler := mcp.NewSSEHandler(func(_ *http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("toolserver: listen on port %d: %w", s.port, err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: handler}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "toolserver: serve error: %v\n", err)
		}
	}()
	return nil
}

// Addr returns the listener address, useful for tests with port 0.
func (s *Server) Addr() net.Addr {
	if s.ln != nil {
		return s.ln.Addr()
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
