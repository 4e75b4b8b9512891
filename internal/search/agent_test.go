package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nvaruna/RagChatServer/internal/config"
)

type stubLLM struct {
	onComplete func(ctx context.Context, systemPrompt string, input string) (string, error)
}

func (s *stubLLM) Reformulate(ctx context.Context, question string, history []string) (string, error) {
	return question, nil
}

func (s *stubLLM) GenerateAnswer(ctx context.Context, question string, matches []string, history []string) (string, error) {
	return "", nil
}

func (s *stubLLM) Complete(ctx context.Context, systemPrompt string, input string) (string, error) {
	if s.onComplete != nil {
		return s.onComplete(ctx, systemPrompt, input)
	}
	return "composed answer", nil
}

type stubTool struct {
	name        string
	observation string
	err         error
	calls       int
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Run(ctx context.Context, query string) (string, error) {
	s.calls++
	return s.observation, s.err
}

func TestLatestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		expected string
	}{
		{"empty", nil, ""},
		{
			"last user wins",
			[]Message{
				{Role: "user", Content: "first"},
				{Role: "assistant", Content: "reply"},
				{Role: "user", Content: "second"},
			},
			"second",
		},
		{
			"no user role falls back to last",
			[]Message{{Role: "system", Content: "setup"}, {Role: "assistant", Content: "reply"}},
			"reply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := latestUserMessage(tt.messages); got != tt.expected {
				t.Errorf("latestUserMessage = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestAgentRun_ComposesFromObservations(t *testing.T) {
	tool := &stubTool{name: "Search", observation: "Go is a programming language."}
	var capturedInput string
	llmStub := &stubLLM{
		onComplete: func(ctx context.Context, systemPrompt string, input string) (string, error) {
			if systemPrompt != config.SearchAgentPrompt {
				t.Errorf("unexpected system prompt: %q", systemPrompt)
			}
			capturedInput = input
			return "Go is a language (via Search).", nil
		},
	}
	agent := NewAgent(llmStub, tool)

	result, err := agent.Run(context.Background(), []Message{{Role: "user", Content: "What is Go?"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if tool.calls != 1 {
		t.Errorf("tool ran %d times; want 1", tool.calls)
	}
	if result.Output != "Go is a language (via Search)." {
		t.Errorf("Output = %q", result.Output)
	}
	if len(result.Steps) != 1 || result.Steps[0].Tool != "Search" {
		t.Errorf("Steps = %+v", result.Steps)
	}
	if !strings.Contains(capturedInput, "What is Go?") || !strings.Contains(capturedInput, "[Search]") {
		t.Errorf("LLM input missing question or observation label: %q", capturedInput)
	}
}

func TestAgentRun_AllToolsFail(t *testing.T) {
	agent := NewAgent(&stubLLM{}, &stubTool{name: "Search", err: errors.New("offline")})

	result, err := agent.Run(context.Background(), []Message{{Role: "user", Content: "anything"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(result.Output, "I apologize") {
		t.Errorf("expected apologetic fallback, got %q", result.Output)
	}
	if len(result.Steps) != 0 {
		t.Errorf("failed tools must not record steps: %+v", result.Steps)
	}
}

func TestAgentRun_LLMFailureStillReturnsSteps(t *testing.T) {
	tool := &stubTool{name: "Wikipedia", observation: "An encyclopedia entry."}
	llmStub := &stubLLM{
		onComplete: func(ctx context.Context, systemPrompt string, input string) (string, error) {
			return "", errors.New("provider down")
		},
	}
	agent := NewAgent(llmStub, tool)

	result, err := agent.Run(context.Background(), []Message{{Role: "user", Content: "anything"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(result.Output, "I encountered an error") {
		t.Errorf("expected error fallback, got %q", result.Output)
	}
	if len(result.Steps) != 1 {
		t.Errorf("Steps = %+v; want the successful observation kept", result.Steps)
	}
}

func TestAgentRun_TruncatesObservations(t *testing.T) {
	huge := strings.Repeat("x", config.MaxObservationChars+500)
	agent := NewAgent(&stubLLM{}, &stubTool{name: "Search", observation: huge})

	result, err := agent.Run(context.Background(), []Message{{Role: "user", Content: "big"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := len([]rune(result.Steps[0].Observation)); got != config.MaxObservationChars {
		t.Errorf("observation length = %d; want %d", got, config.MaxObservationChars)
	}
}

func TestAgentRun_EmptyMessages(t *testing.T) {
	agent := NewAgent(&stubLLM{})

	result, err := agent.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Output != "" || len(result.Steps) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestStripSearchMarkup(t *testing.T) {
	in := `The <span class="searchmatch">Go</span> language`
	if got := stripSearchMarkup(in); got != "The Go language" {
		t.Errorf("stripSearchMarkup = %q", got)
	}
}
