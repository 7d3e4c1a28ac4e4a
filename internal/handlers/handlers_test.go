package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/data/store"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/rag/ingest/pdftest"
	"github.com/akolanti/ChatPDF/internal/rag/prompt"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/go-chi/chi/v5"
)

type testEnv struct {
	router   chi.Router
	registry *session.Registry
	jobs     chan jobModel.Job
	store    *store.InMemoryJobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	settings := config.Default()
	settings.Ingest.UploadDir = t.TempDir()
	settings.Ingest.MaxUploadBytes = 1 << 20

	env := &testEnv{
		registry: session.NewRegistry(nil, settings.Ingest, settings.Sessions),
		jobs:     make(chan jobModel.Job, 10),
		store:    store.InitInMemoryJobStore(time.Hour),
	}
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        env.jobs,
		DispatcherChannel: make(chan bool, 1),
		JobStore:          env.store,
	})

	previous := handlerInstance
	handlerInstance = &JobHandler{service: service, sessions: env.registry, ingest: settings.Ingest}
	t.Cleanup(func() { handlerInstance = previous })

	r := chi.NewRouter()
	r.Get("/models", GetModelsHandler)
	r.Put("/session/model", PutSessionModelHandler)
	r.Get("/session", GetSessionHandler)
	r.Get("/session/pages", GetSessionPagesHandler)
	r.Post("/chat", ChatHandler)
	r.Post("/ingest", PostIngestHandler)
	r.Get("/status/{id}", GetStatusHandler)
	env.router = r
	return env
}

// do runs a request as the middleware would hand it over, with the session id in the context.
func (env *testEnv) do(sessionId string, method string, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req = req.WithContext(context.WithValue(req.Context(), config.SESSION_ID_KEY, sessionId))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return v
}

func multipartBody(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("document", fileName)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestGetModelsHandler(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do("s1", http.MethodGet, "/models", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	res := decode[api.ModelsResponse](t, rec)
	if len(res.Models) != 3 || res.Selected != prompt.Default() || !res.Models[0].Default {
		t.Errorf("unexpected models response %+v", res)
	}
}

func TestPutSessionModelHandler(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"Known option", `{"model":"` + prompt.PhiBode + `"}`, http.StatusOK},
		{"Unknown option", `{"model":"gpt-99"}`, http.StatusBadRequest},
		{"Broken JSON", `{"model":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do("s1", http.MethodPut, "/session/model", strings.NewReader(tt.body), "application/json")
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	sess, _ := env.registry.Get("s1")
	if sess.Model() != prompt.PhiBode {
		t.Errorf("rejected selections must keep the previous choice, got %s", sess.Model())
	}
}

func TestChatHandler(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Empty message", func(t *testing.T) {
		rec := env.do("s1", http.MethodPost, "/chat", strings.NewReader(`{"message":"   "}`), "application/json")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("No document loaded", func(t *testing.T) {
		rec := env.do("s1", http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`), "application/json")
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
		if len(env.jobs) != 0 {
			t.Error("no job should be queued")
		}
	})

	t.Run("Queued", func(t *testing.T) {
		sess, _ := env.registry.GetOrCreate("s1")
		index, err := chromemDB.NewStore().CreateIndex(context.Background(), "doc")
		if err != nil {
			t.Fatal(err)
		}
		_ = sess.ReplaceIndex(context.Background(), nil, nil, nil, index)

		rec := env.do("s1", http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`), "application/json")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		res := decode[api.InitJobResponse](t, rec)
		queued := <-env.jobs
		if queued.Id != res.Id || queued.SessionId != "s1" || queued.JobPayload.Question != "hello" || queued.JobType != jobModel.JobTypeQuery {
			t.Errorf("unexpected queued job %+v", queued)
		}
		if queued.JobPayload.ModelOption != sess.Model() {
			t.Errorf("question should carry the model chosen when asked, got %q", queued.JobPayload.ModelOption)
		}
	})
}

func TestPostIngestHandler(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Not a PDF", func(t *testing.T) {
		body, ct := multipartBody(t, "notes.txt", []byte("plain"))
		rec := env.do("s1", http.MethodPost, "/ingest", body, ct)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Missing file field", func(t *testing.T) {
		rec := env.do("s1", http.MethodPost, "/ingest", strings.NewReader(""), "multipart/form-data; boundary=x")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Accepted", func(t *testing.T) {
		body, ct := multipartBody(t, "report.pdf", []byte("%PDF-1.4 whatever"))
		rec := env.do("s1", http.MethodPost, "/ingest", body, ct)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}
		queued := <-env.jobs
		if queued.JobType != jobModel.JobTypeIngest || queued.JobPayload.IngestFileName != "report.pdf" {
			t.Errorf("unexpected queued job %+v", queued)
		}
		if _, err := os.Stat(queued.JobPayload.IngestURL); err != nil {
			t.Errorf("upload should wait on disk for the worker: %v", err)
		}
	})
}

func TestGetStatusHandler(t *testing.T) {
	env := newTestEnv(t)
	_ = env.store.SaveJob(context.Background(), jobModel.Job{Id: "job-1", SessionId: "s1", Status: jobModel.JobStatusRunning})

	tests := []struct {
		name    string
		session string
		id      string
		want    int
	}{
		{"Own job", "s1", "job-1", http.StatusOK},
		{"Other session", "s2", "job-1", http.StatusNotFound},
		{"Unknown job", "s1", "job-2", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.session, http.MethodGet, "/status/"+tt.id, nil, "")
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK {
				res := decode[api.JobResponse](t, rec)
				if res.Result.Status != string(jobModel.JobStatusRunning) {
					t.Errorf("unexpected status %s", res.Result.Status)
				}
			}
		})
	}
}

func TestGetSessionHandlers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do("s1", http.MethodGet, "/session", nil, "")
	res := decode[api.SessionResponse](t, rec)
	if res.SessionId != "s1" || res.Ready || res.Model != prompt.Default() {
		t.Errorf("unexpected session %+v", res)
	}

	rec = env.do("s1", http.MethodGet, "/session/pages", nil, "")
	pages := decode[api.PagesResponse](t, rec)
	if len(pages.Pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages.Pages))
	}
}

type unitEmbedder struct{}

func (unitEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (unitEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (unitEmbedder) ModelName() string { return "unit" }

func TestGetSessionPagesHandler_ShowsPagesPastTheCap(t *testing.T) {
	env := newTestEnv(t)
	texts := make([]string, 5)
	for i := range texts {
		texts[i] = fmt.Sprintf("Page number %d", i+1)
	}
	path := pdftest.Write(t, t.TempDir(), "long.pdf", texts)

	settings := config.Default().Ingest
	settings.MaxIndexedPages = 3
	res, err := ingest.NewPipeline(settings, chromemDB.NewStore()).Run(context.Background(), ingest.Input{
		Upload:    ingest.Upload{Path: path, FileName: "long.pdf"},
		Splitter:  ingest.NewSplitter(settings.ChunkSize, settings.ChunkOverlap),
		Embedder:  unitEmbedder{},
		IndexName: "s1",
	})
	if err != nil {
		t.Fatalf("ingestion failed: %v", err)
	}
	sess, _ := env.registry.GetOrCreate("s1")
	if err := sess.ReplaceIndex(context.Background(), res.Loader, res.Pages, res.Chunks, res.Index); err != nil {
		t.Fatal(err)
	}

	rec := env.do("s1", http.MethodGet, "/session/pages", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	pages := decode[api.PagesResponse](t, rec)
	if len(pages.Pages) != 5 {
		t.Fatalf("expected all 5 loaded pages, got %d", len(pages.Pages))
	}
	if pages.Pages[4].Number != 5 || !strings.Contains(pages.Pages[4].Content, "Page number 5") {
		t.Errorf("unexpected last page %+v", pages.Pages[4])
	}
	for _, c := range res.Chunks {
		if c.PageNum > 3 {
			t.Errorf("page %d past the cap was indexed", c.PageNum)
		}
	}
}
