package adapter

import (
	"github.com/nvaruna/RagChatServer/internal/api"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/internal/rag"
	"github.com/nvaruna/RagChatServer/internal/search"
)

func ToRagUploadResponse(sessionId string, fileCount int) api.RagUploadResponse {
	return api.RagUploadResponse{
		SessionId: sessionId,
		Status:    "documents ingested",
		FileCount: fileCount,
	}
}

func ToRagQueryResponse(answer string, history []rag.ConversationTurn) api.RagQueryResponse {
	turns := make([]api.ChatTurn, 0, len(history))
	for _, turn := range history {
		turns = append(turns, api.ChatTurn{Question: turn.Question, Answer: turn.Answer})
	}
	return api.RagQueryResponse{Answer: answer, ChatHistory: turns}
}

func ToSearchResponse(result search.Result) api.SearchResponse {
	steps := make([]api.SearchStep, 0, len(result.Steps))
	for _, step := range result.Steps {
		steps = append(steps, api.SearchStep{
			Tool:        step.Tool,
			ToolInput:   step.ToolInput,
			Observation: step.Observation,
		})
	}
	return api.SearchResponse{Response: result.Output, Steps: steps}
}

func ToSessionResponse(session chatModel.ChatSession) api.SessionResponse {
	return api.SessionResponse{
		SessionId: session.SessionId,
		Name:      session.Name,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func ToSessionResponses(sessions []chatModel.ChatSession) []api.SessionResponse {
	result := make([]api.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, ToSessionResponse(s))
	}
	return result
}

func ToMessageResponses(messages []chatModel.ChatMessage) []api.MessageResponse {
	result := make([]api.MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, api.MessageResponse{
			SessionId: m.SessionId,
			Role:      m.Role,
			Content:   m.Content,
			Thinking:  m.Thinking,
			Timestamp: m.Timestamp,
		})
	}
	return result
}

func BadRequest(message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
	}
}
