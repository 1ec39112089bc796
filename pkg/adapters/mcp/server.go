package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/internal/presentation/graph"
	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/people"
	"github.com/aretw0/onboard/pkg/sequence"
	"github.com/aretw0/onboard/pkg/trigger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SequencesResponse lists the sequences of the organization.
type SequencesResponse struct {
	Sequences []*domain.Sequence `json:"sequences" jsonschema_description:"Sequences ordered by name"`
}

// TemplatesResponse lists the choices for one item kind.
type TemplatesResponse struct {
	Kind      string            `json:"kind" jsonschema_description:"The requested item slug"`
	Templates []catalog.Summary `json:"templates" jsonschema_description:"Templates, or provisioning integrations for accountprovision"`
}

type sequenceArgs struct {
	SequenceID int64 `json:"sequence_id"`
}

type newHireArgs struct {
	UserID int64 `json:"user_id"`
}

type templatesArgs struct {
	Kind string `json:"kind"`
}

// Server exposes an App as an MCP Server.
type Server struct {
	app       *onboard.App
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(app *onboard.App) *Server {
	s := &Server{
		app:       app,
		mcpServer: server.NewMCPServer("onboard-mcp", strings.TrimSpace(onboard.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mostly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_sequences",
		mcp.WithDescription("List the onboarding sequences."),
		mcp.WithOutputSchema[SequencesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListSequences))

	s.mcpServer.AddTool(mcp.NewTool("get_timeline",
		mcp.WithDescription("Get a sequence with its conditions in timeline order and the items each one assigns."),
		mcp.WithNumber("sequence_id", mcp.Required(), mcp.Description("ID of the sequence")),
		mcp.WithOutputSchema[sequence.Timeline](),
	), mcp.NewStructuredToolHandler(s.handleGetTimeline))

	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the template library for an item kind (todo, resource, introduction, badge, appointment, preboarding, accountprovision)."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Item slug")),
		mcp.WithOutputSchema[TemplatesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListTemplates))

	s.mcpServer.AddTool(mcp.NewTool("new_hire_timeline",
		mcp.WithDescription("Get the dated timeline of a new hire."),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("ID of the new hire")),
		mcp.WithOutputSchema[people.Timeline](),
	), mcp.NewStructuredToolHandler(s.handleNewHireTimeline))

	s.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Fire the scheduled conditions that are due now."),
		mcp.WithOutputSchema[trigger.TickReport](),
	), mcp.NewStructuredToolHandler(s.handleTick))

	// TOOL: timeline_diagram
	s.mcpServer.AddTool(mcp.NewTool("timeline_diagram",
		mcp.WithDescription("Render a sequence timeline as a Mermaid flowchart."),
		mcp.WithNumber("sequence_id", mcp.Required(), mcp.Description("ID of the sequence")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args sequenceArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		tl, err := s.app.Sequences.Timeline(ctx, args.SequenceID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("timeline failed: %v", err)), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(tl, nil)), nil
	})
}

func (s *Server) handleListSequences(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SequencesResponse, error) {
	seqs, err := s.app.Sequences.List(ctx)
	if err != nil {
		return SequencesResponse{}, fmt.Errorf("list sequences: %w", err)
	}
	return SequencesResponse{Sequences: seqs}, nil
}

func (s *Server) handleGetTimeline(ctx context.Context, request mcp.CallToolRequest, args sequenceArgs) (sequence.Timeline, error) {
	tl, err := s.app.Sequences.Timeline(ctx, args.SequenceID)
	if err != nil {
		return sequence.Timeline{}, fmt.Errorf("timeline: %w", err)
	}
	return *tl, nil
}

func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest, args templatesArgs) (TemplatesResponse, error) {
	summaries, err := s.app.Sequences.ListTemplates(ctx, args.Kind)
	if err != nil {
		return TemplatesResponse{}, fmt.Errorf("list templates: %w", err)
	}
	if summaries == nil {
		summaries = []catalog.Summary{}
	}
	return TemplatesResponse{Kind: args.Kind, Templates: summaries}, nil
}

func (s *Server) handleNewHireTimeline(ctx context.Context, request mcp.CallToolRequest, args newHireArgs) (people.Timeline, error) {
	tl, err := s.app.People.Timeline(ctx, args.UserID)
	if err != nil {
		return people.Timeline{}, fmt.Errorf("new hire timeline: %w", err)
	}
	return *tl, nil
}

func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (trigger.TickReport, error) {
	report, err := s.app.Trigger.Tick(ctx)
	if err != nil {
		slog.Error("MCP Tick: some conditions failed", "error", err)
		if report == nil {
			return trigger.TickReport{}, fmt.Errorf("tick: %w", err)
		}
	}
	return *report, nil
}

func (s *Server) registerResources() {
	// EXPOSE: onboard://sequences
	s.mcpServer.AddResource(mcp.NewResource("onboard://sequences", "Onboarding sequences",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		seqs, err := s.app.Sequences.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sequences: %w", err)
		}
		jsonBytes, _ := json.Marshal(seqs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "onboard://sequences",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
