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

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/session"
	"github.com/aretw0/automata/pkg/validator"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const indexURI = "automata://index"

// AutomatonArgs addresses one stored automaton.
type AutomatonArgs struct {
	ID string `json:"id"`
}

// SimulateArgs carries the words as a JSON array or a comma separated list.
type SimulateArgs struct {
	ID    string `json:"id"`
	Words string `json:"words"`
}

// ConvertArgs names the target kind.
type ConvertArgs struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// SaveArgs carries a JSON or YAML automaton document.
type SaveArgs struct {
	ID       string `json:"id"`
	Document string `json:"document"`
}

// CheckResponse lists the validator findings.
type CheckResponse struct {
	ID          string              `json:"id" jsonschema_description:"Automaton ID"`
	Kind        domain.Kind         `json:"kind" jsonschema_description:"dfa, nfa or pda"`
	Diagnostics []domain.Diagnostic `json:"diagnostics" jsonschema_description:"Validation findings"`
	Fatal       bool                `json:"fatal" jsonschema_description:"True when an error-severity finding is present"`
}

// SimulateResponse holds one verdict per word.
type SimulateResponse struct {
	ID      string                 `json:"id"`
	Results []automata.WordVerdict `json:"results" jsonschema_description:"Acceptance verdict per word"`
}

// DocumentResponse is returned by tools that write an automaton.
type DocumentResponse struct {
	ID          string              `json:"id"`
	Document    domain.Document     `json:"document"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// Server exposes the automaton store as MCP tools and resources.
type Server struct {
	manager   *session.Manager
	editor    []automata.Option
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithEditorOptions are applied to every editor the tools build.
func WithEditorOptions(opts ...automata.Option) Option {
	return func(s *Server) {
		s.editor = append(s.editor, opts...)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   mgr,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("automata-mcp", strings.TrimSpace(automata.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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
	idParam := mcp.WithString("id", mcp.Required(), mcp.Description("ID of the stored automaton"))

	s.mcpServer.AddTool(mcp.NewTool("list_automata",
		mcp.WithDescription("List the IDs of every stored automaton."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("save_automaton",
		mcp.WithDescription("Create or replace an automaton from a JSON or YAML document with kind, states and transitions."),
		idParam,
		mcp.WithString("document", mcp.Required(), mcp.Description("The automaton document (JSON or YAML)")),
		mcp.WithOutputSchema[DocumentResponse](),
	), mcp.NewStructuredToolHandler(s.handleSave))

	s.mcpServer.AddTool(mcp.NewTool("check_automaton",
		mcp.WithDescription("Validate an automaton and list structural problems for its kind."),
		idParam,
		mcp.WithOutputSchema[CheckResponse](),
	), mcp.NewStructuredToolHandler(s.handleCheck))

	s.mcpServer.AddTool(mcp.NewTool("simulate_words",
		mcp.WithDescription("Run each word through the automaton and report acceptance."),
		idParam,
		mcp.WithString("words", mcp.Required(), mcp.Description(`JSON array of words or a comma separated list; use "" for the empty word`)),
		mcp.WithOutputSchema[SimulateResponse](),
	), mcp.NewStructuredToolHandler(s.handleSimulate))

	s.mcpServer.AddTool(mcp.NewTool("convert_automaton",
		mcp.WithDescription("Convert the stored automaton to another kind and save the result."),
		idParam,
		mcp.WithString("kind", mcp.Required(), mcp.Enum("dfa", "nfa", "pda"), mcp.Description("Target kind")),
		mcp.WithOutputSchema[DocumentResponse](),
	), mcp.NewStructuredToolHandler(s.handleConvert))

	s.mcpServer.AddTool(mcp.NewTool("add_sink_state",
		mcp.WithDescription("Complete a DFA with a non-accepting sink state and save the result."),
		idParam,
		mcp.WithOutputSchema[DocumentResponse](),
	), mcp.NewStructuredToolHandler(s.handleSink))

	s.mcpServer.AddTool(mcp.NewTool("formal_definition",
		mcp.WithDescription("Render the formal definition and transition table as markdown."),
		idParam,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := s.load(ctx, request.GetString("id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		md := m.FormalDefinition().Markdown() + "\n## Transition table\n\n" + m.TransitionTable().Markdown()
		return mcp.NewToolResultText(md), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("mermaid_graph",
		mcp.WithDescription("Render the automaton as a Mermaid flowchart."),
		idParam,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := s.load(ctx, request.GetString("id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(m, nil)), nil
	})
}

func (s *Server) load(ctx context.Context, id string) (*automaton.Model, error) {
	if id == "" {
		return nil, errors.New("id is required")
	}
	return s.manager.Load(ctx, id)
}

func (s *Server) newEditor(m *automaton.Model) (*automata.Editor, error) {
	opts := append([]automata.Option{automata.WithLogger(s.logger)}, s.editor...)
	return automata.New(m, opts...)
}

func (s *Server) documentResponse(id string, m *automaton.Model) DocumentResponse {
	return DocumentResponse{ID: id, Document: m.Document(), Diagnostics: validator.Check(m)}
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest, args SaveArgs) (DocumentResponse, error) {
	if args.ID == "" {
		return DocumentResponse{}, errors.New("id is required")
	}
	format := automaton.FormatJSON
	if !strings.HasPrefix(strings.TrimSpace(args.Document), "{") {
		format = automaton.FormatYAML
	}
	doc, err := automaton.ParseDocument([]byte(args.Document), format)
	if err != nil {
		return DocumentResponse{}, err
	}
	if doc.Kind == "" {
		return DocumentResponse{}, fmt.Errorf("%w: kind is required", domain.ErrMalformedDocument)
	}
	m, err := automaton.New(doc.Kind, doc.States, doc.Transitions, automaton.WithLogger(s.logger))
	if err != nil {
		return DocumentResponse{}, err
	}
	if _, err := s.newEditor(m); err != nil {
		return DocumentResponse{}, err
	}
	if err := s.manager.Save(ctx, args.ID, m); err != nil {
		return DocumentResponse{}, fmt.Errorf("save failed: %w", err)
	}
	return s.documentResponse(args.ID, m), nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args AutomatonArgs) (CheckResponse, error) {
	m, err := s.load(ctx, args.ID)
	if err != nil {
		return CheckResponse{}, err
	}
	ds := validator.Check(m)
	return CheckResponse{ID: args.ID, Kind: m.Kind(), Diagnostics: ds, Fatal: validator.HasFatal(ds)}, nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args SimulateArgs) (SimulateResponse, error) {
	m, err := s.load(ctx, args.ID)
	if err != nil {
		return SimulateResponse{}, err
	}
	words, err := parseWords(args.Words)
	if err != nil {
		return SimulateResponse{}, err
	}
	ed, err := s.newEditor(m)
	if err != nil {
		return SimulateResponse{}, err
	}
	return SimulateResponse{ID: args.ID, Results: ed.TestWords(words)}, nil
}

func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest, args ConvertArgs) (DocumentResponse, error) {
	if args.ID == "" {
		return DocumentResponse{}, errors.New("id is required")
	}
	target, err := domain.ParseKind(args.Kind)
	if err != nil {
		return DocumentResponse{}, err
	}
	m, err := s.manager.Update(ctx, args.ID, func(m *automaton.Model) (*automaton.Model, error) {
		ed, err := s.newEditor(m)
		if err != nil {
			return nil, err
		}
		if err := ed.SwitchKind(target); err != nil {
			return nil, err
		}
		return ed.Model(), nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}
	return s.documentResponse(args.ID, m), nil
}

func (s *Server) handleSink(ctx context.Context, request mcp.CallToolRequest, args AutomatonArgs) (DocumentResponse, error) {
	if args.ID == "" {
		return DocumentResponse{}, errors.New("id is required")
	}
	m, err := s.manager.Update(ctx, args.ID, func(m *automaton.Model) (*automaton.Model, error) {
		ed, err := s.newEditor(m)
		if err != nil {
			return nil, err
		}
		if err := ed.AddSinkState(); err != nil {
			return nil, err
		}
		return ed.Model(), nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}
	return s.documentResponse(args.ID, m), nil
}

// parseWords accepts `["a","ab"]` or `a, ab`.
func parseWords(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var words []string
		if err := json.Unmarshal([]byte(raw), &words); err != nil {
			return nil, fmt.Errorf("invalid words: %w", err)
		}
		return words, nil
	}
	if raw == "" {
		return []string{""}, nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(indexURI, "Stored automata",
		mcp.WithResourceDescription("IDs of every stored automaton"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list automata: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      indexURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate("automata://{id}", "Automaton document",
		mcp.WithTemplateDescription("The stored automaton as a JSON document"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readAutomaton)
}

func (s *Server) readAutomaton(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	m, err := s.load(ctx, strings.TrimPrefix(uri, "automata://"))
	if err != nil {
		return nil, err
	}
	data, err := m.Export(automaton.FormatJSON)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
