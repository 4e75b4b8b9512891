package llm

import "context"

type Provider interface {
	// Reformulate rewrites a follow-up question into a standalone one using
	// the chat history. It must never answer the question.
	Reformulate(ctx context.Context, question string, history []string) (string, error)

	// GenerateAnswer produces a grounded answer from the retrieved context,
	// the chat history and the original question.
	GenerateAnswer(ctx context.Context, question string, matches []string, history []string) (string, error)

	// Complete is a single-shot generation with an arbitrary system prompt,
	// used by the search agent and the summarizer.
	Complete(ctx context.Context, systemPrompt string, input string) (string, error)
}
