package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/metrics"
	"github.com/nvaruna/RagChatServer/internal/rag/llm"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type Step struct {
	Tool        string
	ToolInput   string
	Observation string
}

type Result struct {
	Output string
	Steps  []Step
}

type Message struct {
	Role    string
	Content string
}

// Agent answers open-web questions by consulting every tool and letting the
// LLM compose a final answer from the observations.
type Agent struct {
	tools       []Tool
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

func NewAgent(llmProvider llm.Provider, tools ...Tool) *Agent {
	if len(tools) == 0 {
		tools = []Tool{DuckDuckGoTool{}, ArxivTool{}, WikipediaTool{}}
	}
	return &Agent{
		tools:       tools,
		llmProvider: llmProvider,
		logger:      logger_i.NewLogger("Search Agent"),
	}
}

func (a *Agent) Run(ctx context.Context, messages []Message) (Result, error) {
	log := a.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	query := latestUserMessage(messages)
	if query == "" {
		return Result{}, nil
	}

	var steps []Step
	var observations []string
	for _, tool := range a.tools {
		start := time.Now()
		observation, err := tool.Run(ctx, query)
		metrics.CaptureExecutionMetrics("search_tool", time.Since(start))
		if err != nil {
			log.Warn("Tool failed", "tool", tool.Name(), "error", err)
			continue
		}
		observation = truncate(observation, config.MaxObservationChars)
		steps = append(steps, Step{Tool: tool.Name(), ToolInput: query, Observation: observation})
		observations = append(observations, fmt.Sprintf("[%s] %s", tool.Name(), observation))
	}

	if len(observations) == 0 {
		return Result{
			Output: "I apologize, but I couldn't generate a proper response. The search may have encountered an issue or the query was too complex.",
			Steps:  steps,
		}, nil
	}

	input := fmt.Sprintf("Question: %s\n\nObservations:\n%s", query, strings.Join(observations, "\n\n"))
	output, err := a.llmProvider.Complete(ctx, config.SearchAgentPrompt, input)
	if err != nil {
		log.Error("Answer composition failed", "error", err)
		return Result{
			Output: fmt.Sprintf("I encountered an error while processing your request: %s. Please try rephrasing your question or ask something else.", err),
			Steps:  steps,
		}, nil
	}

	return Result{Output: output, Steps: steps}, nil
}

func latestUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
