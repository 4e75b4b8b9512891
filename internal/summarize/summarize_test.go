package summarize

import (
	"context"
	"errors"
	"net/url"
	"testing"
)

type stubLLM struct{}

func (stubLLM) Reformulate(ctx context.Context, question string, history []string) (string, error) {
	return question, nil
}

func (stubLLM) GenerateAnswer(ctx context.Context, question string, matches []string, history []string) (string, error) {
	return "", nil
}

func (stubLLM) Complete(ctx context.Context, systemPrompt string, input string) (string, error) {
	return "a summary", nil
}

func TestSummarize_RejectsInvalidURLs(t *testing.T) {
	s := NewSummarizer(stubLLM{})

	bad := []string{
		"",
		"   ",
		"not a url",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"/relative/path",
	}
	for _, u := range bad {
		if _, err := s.Summarize(context.Background(), u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Summarize(%q) err = %v; want ErrInvalidURL", u, err)
		}
	}
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		rawURL   string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=abc123", true},
		{"https://youtube.com/watch?v=abc123", true},
		{"https://youtu.be/abc123", true},
		{"https://m.youtube.com/watch?v=abc123", true},
		{"https://example.com/watch?v=abc123", false},
		{"https://notyoutube.com/video", false},
	}

	for _, tt := range tests {
		parsed, err := url.Parse(tt.rawURL)
		if err != nil {
			t.Fatal(err)
		}
		if got := isYouTubeURL(parsed); got != tt.expected {
			t.Errorf("isYouTubeURL(%s) = %v; want %v", tt.rawURL, got, tt.expected)
		}
	}
}
