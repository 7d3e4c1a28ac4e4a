// Package tui is the terminal front end: model selection, PDF upload and questions.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const loadCommand = ":load "

// Backend is the TUI-facing subset of the HTTP client.
type Backend interface {
	Models(ctx context.Context) (api.ModelsResponse, error)
	SelectModel(ctx context.Context, model string) (api.SessionResponse, error)
	Pages(ctx context.Context) (api.PagesResponse, error)
	Upload(ctx context.Context, path string) (api.InitJobResponse, error)
	Ask(ctx context.Context, question string) (api.InitJobResponse, error)
	Wait(ctx context.Context, jobId string) (api.JobResponse, error)
}

type modelsMsg struct {
	res api.ModelsResponse
	err error
}

type modelSelectedMsg struct {
	index int
	err   error
}

type pagesMsg struct {
	res api.PagesResponse
	err error
}

type ingestDoneMsg struct {
	job api.JobResponse
	err error
}

type answerMsg struct {
	question string
	job      api.JobResponse
	err      error
}

type Model struct {
	backend  Backend
	ctx      context.Context
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	models    []api.ModelOption
	selected  int
	selecting bool
	document  string
	loaded    bool
	busy      bool
	ready     bool

	status     string
	transcript []string
}

func New(ctx context.Context, backend Backend) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or :load <path to pdf>"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		backend:  backend,
		ctx:      ctx,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		status:   "Please load a PDF document first.",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.fetchModels())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		// header, model line, status
		reserved := 3 + ih + 1
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case modelsMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.models = msg.res.Models
		for i, o := range m.models {
			if o.Id == msg.res.Selected {
				m.selected = i
			}
		}
		return m, nil

	case modelSelectedMsg:
		m.selecting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.selected = msg.index
		return m, nil

	case pagesMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.appendPages(msg.res)
		return m, nil

	case ingestDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Upload failed: " + msg.err.Error()
			return m, nil
		}
		m.loaded = true
		if r := msg.job.Result.IngestResponse; r != nil {
			m.document = r.FileName
			m.status = fmt.Sprintf("PDF loaded successfully: %s (%d pages, %d chunks)", r.FileName, r.PagesIndexed, r.Chunks)
			if r.Truncated {
				m.status += fmt.Sprintf(", only the first %d of %d pages are searchable", r.PagesIndexed, r.PagesLoaded)
			}
		} else {
			m.status = "PDF loaded successfully."
		}
		return m, m.fetchPages()

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.appendAnswer(msg.question, msg.job.Result.RAGExternalResponse)
		m.status = "Ready."
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "right":
			return m.cycleModel(msg.String() == "right")
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Chat with PDF")
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + m.modelLine() + "\n" + transcriptStyle.Render(m.viewport.View()) + "\n" + inputStyle.Render(m.input.View()) + "\n" + status
}

func (m Model) cycleModel(forward bool) (tea.Model, tea.Cmd) {
	if m.busy || m.selecting || len(m.models) == 0 {
		return m, nil
	}
	step := len(m.models) - 1
	if forward {
		step = 1
	}
	// the highlight only moves once the server accepted the choice
	next := (m.selected + step) % len(m.models)
	id := m.models[next].Id
	m.selecting = true
	return m, func() tea.Msg {
		_, err := m.backend.SelectModel(m.ctx, id)
		return modelSelectedMsg{index: next, err: err}
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" || m.busy {
		return m, nil
	}
	m.input.SetValue("")

	if strings.HasPrefix(line, loadCommand) {
		path := strings.TrimSpace(strings.TrimPrefix(line, loadCommand))
		m.busy = true
		m.status = "Processing PDF " + path
		return m, func() tea.Msg {
			started, err := m.backend.Upload(m.ctx, path)
			if err != nil {
				return ingestDoneMsg{err: err}
			}
			job, err := m.backend.Wait(m.ctx, started.Id)
			return ingestDoneMsg{job: job, err: err}
		}
	}

	if !m.loaded {
		m.status = "Please load a PDF document first."
		return m, nil
	}
	m.busy = true
	m.status = "Thinking..."
	return m, func() tea.Msg {
		started, err := m.backend.Ask(m.ctx, line)
		if err != nil {
			return answerMsg{question: line, err: err}
		}
		job, err := m.backend.Wait(m.ctx, started.Id)
		return answerMsg{question: line, job: job, err: err}
	}
}

func (m *Model) appendAnswer(question string, res *api.RAGResponse) {
	entry := questionStyle.Render("Q: " + question)
	if res == nil {
		entry += "\n(no answer)"
	} else {
		entry += "\n" + res.Answer
		meta := fmt.Sprintf("Response time: %.2f seconds", res.ResponseTimeSeconds)
		if len(res.Sources) > 0 {
			meta += " | " + strings.Join(res.Sources, ", ")
		}
		entry += "\n" + metaStyle.Render(meta)
	}
	m.transcript = append(m.transcript, entry)
	m.refresh()
}

// appendPages shows the loaded content, one block per page.
func (m *Model) appendPages(res api.PagesResponse) {
	var b strings.Builder
	b.WriteString(questionStyle.Render("Loaded content: " + res.Document))
	for _, p := range res.Pages {
		fmt.Fprintf(&b, "\n%s\n%s", metaStyle.Render(fmt.Sprintf("page %d", p.Number)), p.Content)
	}
	m.transcript = append(m.transcript, b.String())
	m.refresh()
}

func (m *Model) refresh() {
	if len(m.transcript) == 0 {
		m.viewport.SetContent("No questions yet.")
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

func (m Model) modelLine() string {
	if len(m.models) == 0 {
		return metaStyle.Render("Model: loading options")
	}
	o := m.models[m.selected]
	line := fmt.Sprintf("Model: ← %s → (%s)", o.Id, o.Description)
	if m.document != "" {
		line += "  |  " + m.document
	}
	return metaStyle.Render(line)
}

func (m Model) fetchPages() tea.Cmd {
	return func() tea.Msg {
		res, err := m.backend.Pages(m.ctx)
		return pagesMsg{res: res, err: err}
	}
}

func (m Model) fetchModels() tea.Cmd {
	return func() tea.Msg {
		res, err := m.backend.Models(m.ctx)
		return modelsMsg{res: res, err: err}
	}
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	metaStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
