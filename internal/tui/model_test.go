package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/ChatPDF/internal/api"
	tea "github.com/charmbracelet/bubbletea"
)

type MockBackend struct {
	Selected      []string
	Uploaded      []string
	Asked         []string
	OnWait        func(jobId string) (api.JobResponse, error)
	OnSelectModel func(model string) error
}

func (b *MockBackend) Models(ctx context.Context) (api.ModelsResponse, error) {
	return api.ModelsResponse{
		Selected: "a",
		Models:   []api.ModelOption{{Id: "a"}, {Id: "b"}, {Id: "c"}},
	}, nil
}

func (b *MockBackend) SelectModel(ctx context.Context, model string) (api.SessionResponse, error) {
	b.Selected = append(b.Selected, model)
	if b.OnSelectModel != nil {
		if err := b.OnSelectModel(model); err != nil {
			return api.SessionResponse{}, err
		}
	}
	return api.SessionResponse{Model: model}, nil
}

func (b *MockBackend) Pages(ctx context.Context) (api.PagesResponse, error) {
	return api.PagesResponse{Document: "geo.pdf", Pages: []api.PageContent{
		{Number: 1, Content: "The capital of France is Paris."},
		{Number: 2, Content: "Bananas are yellow."},
	}}, nil
}

func (b *MockBackend) Upload(ctx context.Context, path string) (api.InitJobResponse, error) {
	b.Uploaded = append(b.Uploaded, path)
	return api.InitJobResponse{Id: "ingest"}, nil
}

func (b *MockBackend) Ask(ctx context.Context, question string) (api.InitJobResponse, error) {
	b.Asked = append(b.Asked, question)
	return api.InitJobResponse{Id: "query"}, nil
}

func (b *MockBackend) Wait(ctx context.Context, jobId string) (api.JobResponse, error) {
	if b.OnWait != nil {
		return b.OnWait(jobId)
	}
	return api.JobResponse{}, nil
}

// step feeds msg to the model and runs the returned command once.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, isBatch := out.(tea.BatchMsg); !isBatch {
				next, _ = m.Update(out)
				m = next.(Model)
			}
		}
	}
	return m
}

func typeLine(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	return step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func newModel(t *testing.T, backend *MockBackend) Model {
	t.Helper()
	m := New(context.Background(), backend)
	m = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return step(t, m, m.fetchModels()())
}

func TestModel_CyclesModelOptions(t *testing.T) {
	backend := &MockBackend{}
	m := newModel(t, backend)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})

	want := []string{"b", "a", "c"}
	if strings.Join(backend.Selected, ",") != strings.Join(want, ",") {
		t.Errorf("expected selections %v, got %v", want, backend.Selected)
	}
}

func TestModel_FailedSelectionKeepsModel(t *testing.T) {
	backend := &MockBackend{OnSelectModel: func(model string) error {
		return errors.New("400: unknown model")
	}}
	m := newModel(t, backend)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.selected != 0 || m.selecting {
		t.Errorf("selection should stay on the first option, got %d selecting=%v", m.selected, m.selecting)
	}
	if !strings.Contains(m.status, "unknown model") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestModel_SelectionWaitsForServer(t *testing.T) {
	backend := &MockBackend{}
	m := newModel(t, backend)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	if m.selected != 0 || !m.selecting {
		t.Fatalf("highlight moved before the server answered: %d", m.selected)
	}
	// a second key press while the first change is in flight is ignored
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyRight}); again != nil {
		t.Error("expected no second selection request")
	}
	next, _ = m.Update(cmd())
	if m = next.(Model); m.selected != 1 {
		t.Errorf("expected option 1 after confirmation, got %d", m.selected)
	}
}

func TestModel_ShowsLoadedContent(t *testing.T) {
	m := newModel(t, &MockBackend{})

	next, cmd := m.Update(ingestDoneMsg{job: api.JobResponse{Result: api.Result{IngestResponse: &api.IngestResponse{FileName: "geo.pdf", PagesLoaded: 2, PagesIndexed: 2, Chunks: 2}}}})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected the loaded pages to be fetched")
	}
	m = step(t, m, cmd())
	if len(m.transcript) != 1 {
		t.Fatalf("expected one content entry, got %d", len(m.transcript))
	}
	for _, want := range []string{"geo.pdf", "page 2", "Bananas are yellow."} {
		if !strings.Contains(m.transcript[0], want) {
			t.Errorf("%q missing from %q", want, m.transcript[0])
		}
	}
}

func TestModel_QuestionBeforeLoad(t *testing.T) {
	backend := &MockBackend{}
	m := newModel(t, backend)

	m = typeLine(t, m, "what is this about?")
	if len(backend.Asked) != 0 {
		t.Error("no question may be sent before a document is loaded")
	}
	if !strings.Contains(m.status, "load a PDF") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestModel_LoadThenAsk(t *testing.T) {
	backend := &MockBackend{OnWait: func(jobId string) (api.JobResponse, error) {
		if jobId == "ingest" {
			return api.JobResponse{Result: api.Result{Status: "COMPLETE", IngestResponse: &api.IngestResponse{
				FileName: "geo.pdf", PagesLoaded: 60, PagesIndexed: 50, Chunks: 7, Truncated: true,
			}}}, nil
		}
		return api.JobResponse{Result: api.Result{Status: "COMPLETE", RAGExternalResponse: &api.RAGResponse{
			Answer: "Paris.", ResponseTimeSeconds: 1.5, Sources: []string{"page 1"},
		}}}, nil
	}}
	m := newModel(t, backend)

	m = typeLine(t, m, ":load /tmp/geo.pdf")
	if len(backend.Uploaded) != 1 || backend.Uploaded[0] != "/tmp/geo.pdf" {
		t.Fatalf("unexpected uploads %v", backend.Uploaded)
	}
	if !m.loaded || m.busy || !strings.Contains(m.status, "only the first 50 of 60 pages") {
		t.Fatalf("unexpected state loaded=%v busy=%v status=%q", m.loaded, m.busy, m.status)
	}

	m = typeLine(t, m, "capital of France?")
	if len(backend.Asked) != 1 {
		t.Fatalf("expected one question, got %v", backend.Asked)
	}
	if len(m.transcript) != 1 || !strings.Contains(m.transcript[0], "Paris.") || !strings.Contains(m.transcript[0], "1.50 seconds") {
		t.Errorf("unexpected transcript %v", m.transcript)
	}
}

func TestModel_FailedUploadKeepsPreviousState(t *testing.T) {
	backend := &MockBackend{OnWait: func(jobId string) (api.JobResponse, error) {
		return api.JobResponse{}, errors.New("422: no extractable text")
	}}
	m := newModel(t, backend)

	m = typeLine(t, m, ":load scan.pdf")
	if m.loaded || m.busy {
		t.Errorf("unexpected state loaded=%v busy=%v", m.loaded, m.busy)
	}
	if !strings.Contains(m.status, "no extractable text") {
		t.Errorf("unexpected status %q", m.status)
	}
}
