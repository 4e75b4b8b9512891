package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/rag/llm"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

var errEmptyResponse = errors.New("model returned empty response")

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
}

func (c *llmClient) Reformulate(ctx context.Context, question string, history []string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Chat History:\n")
	prompt.WriteString(strings.Join(history, "\n"))
	prompt.WriteString("\n\nLatest Question: ")
	prompt.WriteString(question)

	standalone, err := c.Complete(ctx, config.ContextualizePrompt, prompt.String())
	if errors.Is(err, errEmptyResponse) {
		// nothing to reformulate with, retrieve on the raw question
		return question, nil
	}
	if err != nil {
		return "", fmt.Errorf("reformulating question: %w", err)
	}
	return strings.TrimSpace(standalone), nil
}

func (c *llmClient) GenerateAnswer(ctx context.Context, question string, matches []string, history []string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Context:\n")
	prompt.WriteString(strings.Join(matches, "\n\n"))
	if len(history) > 0 {
		prompt.WriteString("\n\nChat History:\n")
		prompt.WriteString(strings.Join(history, "\n"))
	}
	prompt.WriteString("\n\nUser Question: ")
	prompt.WriteString(question)

	answer, err := c.Complete(ctx, config.AnswerPrompt, prompt.String())
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, input string) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(input), contentConfig)
	if err != nil {
		logger.Error("Gemini generation failed", "error", err)
		return "", err
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
