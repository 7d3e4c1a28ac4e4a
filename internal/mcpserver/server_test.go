package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/rag"
	"github.com/akolanti/ChatPDF/internal/rag/embedding"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/rag/ingest/pdftest"
	"github.com/akolanti/ChatPDF/internal/rag/prompt"
	"github.com/akolanti/ChatPDF/internal/rag/rag_test"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpFixture struct {
	registry *session.Registry
	rag      rag.Service
	client   *mcp.ClientSession
}

func newMCPFixture(t *testing.T) *mcpFixture {
	t.Helper()
	ctx := context.Background()
	embedder := &rag_test.BagOfWordsEmbedder{}
	llm := &rag_test.MockLLM{OnGenerate: func(ctx context.Context, p string) (string, error) {
		if strings.Contains(p, "Paris") {
			return "Paris.", nil
		}
		return "I don't know.", nil
	}}
	ingestSettings := config.IngestSettings{ChunkSize: 1000, ChunkOverlap: 200, MaxIndexedPages: 50, BatchSize: 100}

	f := &mcpFixture{}
	f.registry = session.NewRegistry(func() embedding.Embedder { return embedder }, ingestSettings, config.SessionSettings{IdleTimeout: time.Hour})
	f.rag = rag.NewService(f.registry, ingest.NewPipeline(ingestSettings, chromemDB.NewStore()), llm, 4)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	srv := New(f.registry, f.rag)
	if _, err := srv.MCP().Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	f.client = cs
	return f
}

func (f *mcpFixture) call(t *testing.T, name string, args any, out any) *mcp.CallToolResult {
	t.Helper()
	res, err := f.client.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool %s: %v", name, err)
	}
	if out != nil && !res.IsError {
		raw, _ := json.Marshal(res.StructuredContent)
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s output: %v", name, err)
		}
	}
	return res
}

func TestListModels(t *testing.T) {
	f := newMCPFixture(t)
	var out ListModelsOutput
	f.call(t, "list_models", map[string]any{}, &out)
	if len(out.Models) != 3 || out.Models[0].Id != prompt.Default() || !out.Models[0].Default {
		t.Errorf("unexpected models %+v", out.Models)
	}
}

func TestSessionTools(t *testing.T) {
	f := newMCPFixture(t)
	sess, _ := f.registry.GetOrCreate("")

	t.Run("Unknown session is a tool error", func(t *testing.T) {
		res := f.call(t, "session_status", SessionInput{SessionId: "missing"}, nil)
		if !res.IsError {
			t.Error("expected a tool error")
		}
	})

	t.Run("Select model", func(t *testing.T) {
		var out SessionStatusOutput
		res := f.call(t, "select_model", SelectModelInput{SessionId: sess.Id, Model: prompt.MetaLlama3}, &out)
		if res.IsError || out.Model != prompt.MetaLlama3 {
			t.Errorf("unexpected result %+v", out)
		}
		res = f.call(t, "select_model", SelectModelInput{SessionId: sess.Id, Model: "nope"}, nil)
		if !res.IsError {
			t.Error("expected unknown model to fail")
		}
	})

	t.Run("Ask without a document", func(t *testing.T) {
		res := f.call(t, "ask_document", AskInput{SessionId: sess.Id, Question: "capital?"}, nil)
		if !res.IsError {
			t.Error("expected an error before any upload")
		}
	})

	t.Run("Ask after upload", func(t *testing.T) {
		path := pdftest.Write(t, t.TempDir(), "geo.pdf", []string{"The capital of France is Paris."})
		sess.Lock()
		_, err := f.rag.Ingest(context.Background(), sess, ingest.Upload{Path: path, FileName: "geo.pdf"})
		sess.Unlock()
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}

		var status SessionStatusOutput
		f.call(t, "session_status", SessionInput{SessionId: sess.Id}, &status)
		if !status.Ready || status.Pages != 1 {
			t.Errorf("unexpected status %+v", status)
		}

		var out AskOutput
		res := f.call(t, "ask_document", AskInput{SessionId: sess.Id, Question: "What is the capital of France?"}, &out)
		if res.IsError || out.Answer != "Paris." || out.ModelOption != prompt.MetaLlama3 {
			t.Errorf("unexpected answer %+v", out)
		}
		if len(out.Sources) != 1 || out.Sources[0] != "page 1" {
			t.Errorf("unexpected sources %v", out.Sources)
		}
	})
}
