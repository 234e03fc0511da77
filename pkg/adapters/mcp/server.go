package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Catneko-0422/tuerulebase"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/file"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const rulesURI = "tuerulebase://rules"

// DecodeResponse is the structured result of decode_code.
type DecodeResponse struct {
	Code     string           `json:"code" jsonschema_description:"The sanitized code that was decoded"`
	RuleID   int64            `json:"rule_id" jsonschema_description:"Rule owning the matching root"`
	RootID   int64            `json:"root_id" jsonschema_description:"Root node the decode started from"`
	Segments []domain.Segment `json:"segments" jsonschema_description:"Labeled segments in code order"`
}

// Engine defines what the MCP server needs from the decoding core.
type Engine interface {
	Decode(ctx context.Context, code string, ruleID int64) (domain.Decoding, error)
	Compose(ctx context.Context, picks []domain.Pick) (domain.Composition, error)
	Store() ports.RuleStore
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("tuerulebase-mcp", strings.TrimSpace(tuerulebase.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

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
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type decodeArgs struct {
	Code   string `json:"code"`
	RuleID int64  `json:"rule_id"`
}

type composeArgs struct {
	Picks string `json:"picks"`
}

func (s *Server) registerTools() {
	decodeTool := mcp.NewTool("decode_code",
		mcp.WithDescription("Split a part code into labeled segments using the stored coding rules."),
		mcp.WithString("code", mcp.Required(), mcp.Description("The part code to decode")),
		mcp.WithNumber("rule_id", mcp.Description("Restrict the search to one rule (optional)")),
		mcp.WithOutputSchema[DecodeResponse](),
	)
	s.mcpServer.AddTool(decodeTool, mcp.NewStructuredToolHandler(s.handleDecode))

	composeTool := mcp.NewTool("compose_code",
		mcp.WithDescription("Assemble a part code from a root-to-node path of picks."),
		mcp.WithString("picks", mcp.Required(), mcp.Description(`JSON array of {"node_id", "option_id"?, "value"?}`)),
		mcp.WithOutputSchema[domain.Composition](),
	)
	s.mcpServer.AddTool(composeTool, mcp.NewStructuredToolHandler(s.handleCompose))

	s.mcpServer.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List every coding rule."),
	), s.handleListRules)
}

func (s *Server) handleDecode(ctx context.Context, request mcp.CallToolRequest, args decodeArgs) (DecodeResponse, error) {
	res, err := s.engine.Decode(ctx, args.Code, args.RuleID)
	if err != nil {
		slog.Warn("MCP Decode failed", "err", err)
		return DecodeResponse{}, fmt.Errorf("decode failed: %w", err)
	}
	return DecodeResponse{
		Code:     res.Code,
		RuleID:   res.RuleID,
		RootID:   res.RootID,
		Segments: res.Segments,
	}, nil
}

func (s *Server) handleCompose(ctx context.Context, request mcp.CallToolRequest, args composeArgs) (domain.Composition, error) {
	var picks []domain.Pick
	if err := json.Unmarshal([]byte(args.Picks), &picks); err != nil {
		return domain.Composition{}, fmt.Errorf("picks must be a JSON array: %w", err)
	}
	comp, err := s.engine.Compose(ctx, picks)
	if err != nil {
		return domain.Composition{}, fmt.Errorf("compose failed: %w", err)
	}
	return comp, nil
}

func (s *Server) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, err := s.engine.Store().ListRules(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list rules failed: %v", err)), nil
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	jsonBytes, _ := json.Marshal(rules)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(rulesURI, "Coding Rule Trees",
		mcp.WithMIMEType("application/json"),
	), s.handleRulesResource)
}

func (s *Server) handleRulesResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := file.Export(ctx, s.engine.Store())
	if err != nil {
		return nil, fmt.Errorf("failed to export rules: %w", err)
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
