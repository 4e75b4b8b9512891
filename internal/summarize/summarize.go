package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/customHttpClient"
	"github.com/nvaruna/RagChatServer/internal/metrics"
	"github.com/nvaruna/RagChatServer/internal/rag/llm"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

var ErrInvalidURL = errors.New("invalid URL provided")
var ErrNoReadableContent = errors.New("no readable content found at URL")

// Summarizer loads a web page or YouTube watch page and condenses it with
// the LLM.
type Summarizer struct {
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

func NewSummarizer(llmProvider llm.Provider) *Summarizer {
	return &Summarizer{
		llmProvider: llmProvider,
		logger:      logger_i.NewLogger("Summarizer"),
	}
}

func (s *Summarizer) Summarize(ctx context.Context, rawURL string) (string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", ErrInvalidURL
	}

	start := time.Now()
	var content string
	if isYouTubeURL(parsed) {
		content, err = loadYouTubeContent(ctx, rawURL)
	} else {
		content, err = loadPageContent(rawURL)
	}
	metrics.CaptureExecutionMetrics("url_load", time.Since(start))
	if err != nil {
		log.Warn("Content load failed", "url", rawURL, "error", err)
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrNoReadableContent
	}

	input := "Content: " + content
	summary, err := s.llmProvider.Complete(ctx, config.SummaryPrompt, input)
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}
	return summary, nil
}

func isYouTubeURL(u *url.URL) bool {
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return host == "youtube.com" || host == "youtu.be" || host == "m.youtube.com"
}

func loadPageContent(rawURL string) (string, error) {
	article, err := readability.FromURL(rawURL, config.SummarizeLoadTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to load page: %w", err)
	}
	var parts []string
	if article.Title != "" {
		parts = append(parts, article.Title)
	}
	if article.TextContent != "" {
		parts = append(parts, article.TextContent)
	}
	return strings.Join(parts, "\n\n"), nil
}

// loadYouTubeContent scrapes the watch page metadata. Transcripts need an
// API key, the title and description are enough for a summary.
func loadYouTubeContent(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36")

	resp, err := customHttpClient.SharedClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to load YouTube video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to load YouTube video: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse YouTube page: %w", err)
	}

	var parts []string
	if title, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists && title != "" {
		parts = append(parts, title)
	} else if title := strings.TrimSpace(doc.Find("title").Text()); title != "" {
		parts = append(parts, title)
	}
	if desc, exists := doc.Find(`meta[property="og:description"]`).Attr("content"); exists && desc != "" {
		parts = append(parts, desc)
	} else if desc, exists := doc.Find(`meta[name="description"]`).Attr("content"); exists && desc != "" {
		parts = append(parts, desc)
	}

	return strings.Join(parts, "\n\n"), nil
}
