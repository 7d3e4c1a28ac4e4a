// Package mcpserver exposes the document sessions as MCP tools over streamable HTTP.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/rag"
	"github.com/akolanti/ChatPDF/internal/rag/prompt"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = logger_i.NewLogger("MCP Server")

// Server wraps the MCP server and the services its tools call.
type Server struct {
	sessions *session.Registry
	rag      rag.Service
	server   *mcp.Server
}

type ModelInfo struct {
	Id          string `json:"id"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

type ListModelsInput struct{}

type ListModelsOutput struct {
	Models []ModelInfo `json:"models"`
}

type SessionInput struct {
	SessionId string `json:"session_id" jsonschema:"session id returned in the X-Session-Id header of the HTTP API"`
}

type SessionStatusOutput struct {
	SessionId string `json:"session_id"`
	Model     string `json:"model"`
	Document  string `json:"document,omitempty"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	Ready     bool   `json:"ready"`
}

type SelectModelInput struct {
	SessionId string `json:"session_id" jsonschema:"session id returned in the X-Session-Id header of the HTTP API"`
	Model     string `json:"model" jsonschema:"one of the ids returned by list_models"`
}

type AskInput struct {
	SessionId string `json:"session_id" jsonschema:"session id returned in the X-Session-Id header of the HTTP API"`
	Question  string `json:"question" jsonschema:"question about the loaded PDF"`
}

type AskOutput struct {
	Answer              string   `json:"answer"`
	ResponseTimeSeconds float64  `json:"response_time_seconds"`
	ModelOption         string   `json:"model_option"`
	AnsweredBy          string   `json:"answered_by"`
	Sources             []string `json:"sources"`
}

func New(sessions *session.Registry, ragService rag.Service) *Server {
	s := &Server{sessions: sessions, rag: ragService}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    config.MCPServerName,
		Title:   "ChatPDF",
		Version: config.MCPServerVersion,
	}, nil)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_models",
		Description: "List the model options. The option selects the prompt template used for answers.",
	}, s.listModelsTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "session_status",
		Description: "Show the selected model option and the loaded document of a session.",
	}, s.sessionStatusTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_model",
		Description: "Change the model option of a session.",
	}, s.selectModelTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask_document",
		Description: `Answer a question from the PDF loaded in a session.

The PDF must have been uploaded through POST /ingest of the HTTP API with the same session id.
Returns the answer, the response time in seconds and the pages the context came from.`,
	}, s.askTool)

	return s
}

// Handler serves the tools at one endpoint. Every MCP session shares the same server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

// MCP exposes the underlying server, tests connect to it in memory.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

func (s *Server) listModelsTool(ctx context.Context, _ *mcp.CallToolRequest, _ ListModelsInput) (*mcp.CallToolResult, ListModelsOutput, error) {
	var out ListModelsOutput
	for _, o := range prompt.Options() {
		out.Models = append(out.Models, ModelInfo{Id: o.Id, Description: o.Description, Default: o.Id == prompt.Default()})
	}
	return nil, out, nil
}

func (s *Server) sessionStatusTool(ctx context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, SessionStatusOutput, error) {
	sess, err := s.lookup(input.SessionId)
	if err != nil {
		return nil, SessionStatusOutput{}, err
	}
	sum := sess.Summary()
	return nil, SessionStatusOutput{
		SessionId: sum.Id,
		Model:     sum.Model,
		Document:  sum.Document,
		Pages:     sum.Pages,
		Chunks:    sum.Chunks,
		Ready:     sum.Ready,
	}, nil
}

func (s *Server) selectModelTool(ctx context.Context, _ *mcp.CallToolRequest, input SelectModelInput) (*mcp.CallToolResult, SessionStatusOutput, error) {
	sess, err := s.lookup(input.SessionId)
	if err != nil {
		return nil, SessionStatusOutput{}, err
	}
	if err := sess.SetModel(input.Model); err != nil {
		return nil, SessionStatusOutput{}, err
	}
	return s.sessionStatusTool(ctx, nil, SessionInput{SessionId: sess.Id})
}

func (s *Server) askTool(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("question is required")
	}
	sess, err := s.lookup(input.SessionId)
	if err != nil {
		return nil, AskOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.QueryJobTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, config.SESSION_ID_KEY, sess.Id)

	sess.Lock()
	defer sess.Unlock()
	ans, err := s.rag.Answer(ctx, sess, input.Question)
	if err != nil {
		logger.FromContext(ctx).Warn("ask_document failed", "error", err)
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer:              ans.Text,
		ResponseTimeSeconds: ans.ResponseTimeSeconds,
		ModelOption:         ans.ModelOption,
		AnsweredBy:          ans.AnsweredBy,
		Sources:             ans.Sources,
	}, nil
}

func (s *Server) lookup(id string) (*session.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", rag.ErrUnknownSession, id)
	}
	return sess, nil
}
