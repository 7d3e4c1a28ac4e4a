package prompt

import (
	"errors"
	"strings"
	"testing"
)

func TestOptions_OrderAndDefault(t *testing.T) {
	opts := Options()
	want := []string{MissLizzy, PhiBode, MetaLlama3}
	if len(opts) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(opts))
	}
	for i, id := range want {
		if opts[i].Id != id {
			t.Errorf("option %d got %s, want %s", i, opts[i].Id, id)
		}
	}
	if Default() != MissLizzy {
		t.Errorf("default got %s", Default())
	}
}

func TestFill(t *testing.T) {
	tests := []struct {
		id      string
		opening string
		closing string
	}{
		{MissLizzy, "You are a helpful and knowledgeable assistant.", "\n\nAnswer:"},
		{PhiBode, "You are an expert in technical and analytical problem-solving.", "\n\nDetailed Answer:"},
		{MetaLlama3, "You are a creative and insightful assistant.", "\n\nInsightful Answer:"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := Fill(tt.id, "The capital of France is Paris.", "What is the capital of France?")
			if err != nil {
				t.Fatalf("Fill failed: %v", err)
			}
			if !strings.HasPrefix(got, tt.opening) {
				t.Errorf("unexpected opening: %q", got)
			}
			if !strings.HasSuffix(got, tt.closing) {
				t.Errorf("unexpected closing: %q", got)
			}
			if !strings.Contains(got, "<context>\nThe capital of France is Paris.\n<context>") {
				t.Errorf("context block missing: %q", got)
			}
			if !strings.Contains(got, "Question: What is the capital of France?") {
				t.Errorf("question missing: %q", got)
			}
		})
	}
}

func TestFill_OptionsOnlyChangeWording(t *testing.T) {
	seen := map[string]bool{}
	for _, o := range Options() {
		got, err := Fill(o.Id, "ctx", "q")
		if err != nil {
			t.Fatal(err)
		}
		if seen[got] {
			t.Errorf("option %s renders the same prompt as another option", o.Id)
		}
		seen[got] = true
	}
}

func TestFill_ValuesWithBracesAreKept(t *testing.T) {
	got, err := Fill(PhiBode, "f(x) = {x + 1}", "what is f?")
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if !strings.Contains(got, "f(x) = {x + 1}") {
		t.Errorf("context was altered: %q", got)
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := Lookup("gpt-4"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
	if _, err := Fill("gpt-4", "c", "q"); err == nil {
		t.Error("expected Fill to fail for an unknown option")
	}
}
