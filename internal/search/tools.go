package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/customHttpClient"
)

// Tool is one research source the agent can consult.
type Tool interface {
	Name() string
	Run(ctx context.Context, query string) (string, error)
}

func fetchBody(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "RagChatServer/1.0")

	resp, err := customHttpClient.SharedClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// DuckDuckGoTool queries the instant-answer API. It covers general web
// questions where an abstract or related topics exist.
type DuckDuckGoTool struct{}

func (DuckDuckGoTool) Name() string { return "Search" }

func (DuckDuckGoTool) Run(ctx context.Context, query string) (string, error) {
	requestURL := "https://api.duckduckgo.com/?format=json&no_html=1&q=" + url.QueryEscape(query)
	body, err := fetchBody(ctx, requestURL)
	if err != nil {
		return "", fmt.Errorf("duckduckgo request failed: %w", err)
	}

	var payload struct {
		AbstractText  string `json:"AbstractText"`
		Answer        string `json:"Answer"`
		RelatedTopics []struct {
			Text string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("duckduckgo response parse failed: %w", err)
	}

	var parts []string
	if payload.Answer != "" {
		parts = append(parts, payload.Answer)
	}
	if payload.AbstractText != "" {
		parts = append(parts, payload.AbstractText)
	}
	for _, topic := range payload.RelatedTopics {
		if len(parts) >= config.SearchResultCount+1 {
			break
		}
		if topic.Text != "" {
			parts = append(parts, topic.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no results for %q", query)
	}
	return strings.Join(parts, "\n"), nil
}

// WikipediaTool searches the MediaWiki API and returns the top snippets.
type WikipediaTool struct{}

func (WikipediaTool) Name() string { return "Wikipedia" }

func (WikipediaTool) Run(ctx context.Context, query string) (string, error) {
	requestURL := fmt.Sprintf(
		"https://en.wikipedia.org/w/api.php?action=query&list=search&format=json&srlimit=%d&srsearch=%s",
		config.SearchResultCount, url.QueryEscape(query))
	body, err := fetchBody(ctx, requestURL)
	if err != nil {
		return "", fmt.Errorf("wikipedia request failed: %w", err)
	}

	var payload struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("wikipedia response parse failed: %w", err)
	}
	if len(payload.Query.Search) == 0 {
		return "", fmt.Errorf("no articles for %q", query)
	}

	var parts []string
	for _, hit := range payload.Query.Search {
		snippet := stripSearchMarkup(hit.Snippet)
		parts = append(parts, fmt.Sprintf("%s: %s", hit.Title, truncate(snippet, 1000)))
	}
	return strings.Join(parts, "\n"), nil
}

// the search API wraps matched terms in span tags
func stripSearchMarkup(s string) string {
	s = strings.ReplaceAll(s, `<span class="searchmatch">`, "")
	s = strings.ReplaceAll(s, "</span>", "")
	return s
}

// ArxivTool queries the arXiv Atom feed for the single most relevant paper.
type ArxivTool struct{}

func (ArxivTool) Name() string { return "Arxiv" }

func (ArxivTool) Run(ctx context.Context, query string) (string, error) {
	requestURL := "http://export.arxiv.org/api/query?max_results=1&search_query=all:" + url.QueryEscape(query)
	body, err := fetchBody(ctx, requestURL)
	if err != nil {
		return "", fmt.Errorf("arxiv request failed: %w", err)
	}

	var feed struct {
		Entries []struct {
			Title   string `xml:"title"`
			Summary string `xml:"summary"`
		} `xml:"entry"`
	}
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", fmt.Errorf("arxiv response parse failed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return "", fmt.Errorf("no papers for %q", query)
	}

	entry := feed.Entries[0]
	summary := strings.Join(strings.Fields(entry.Summary), " ")
	return fmt.Sprintf("%s: %s", strings.TrimSpace(entry.Title), truncate(summary, 200)), nil
}
