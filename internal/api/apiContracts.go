package api

import "time"

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Session not found"`
}

type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type RagUploadResponse struct {
	SessionId string `json:"session_id" example:"session_550"`
	Status    string `json:"status" example:"documents ingested"`
	FileCount int    `json:"file_count" example:"2"`
}

type RagQueryResponse struct {
	Answer      string     `json:"answer"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

type SearchStep struct {
	Tool        string `json:"tool"`
	ToolInput   string `json:"tool_input"`
	Observation string `json:"observation"`
}

type SearchResponse struct {
	Response string       `json:"response"`
	Steps    []SearchStep `json:"steps,omitempty"`
}

type SummarizeResponse struct {
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

type SessionResponse struct {
	SessionId string    `json:"session_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageResponse struct {
	SessionId string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Thinking  []string  `json:"thinking,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserId      string `json:"user_id"`
	FullName    string `json:"full_name"`
}

// requests---------------------

type RagQueryRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Question  string `json:"question" validate:"required"`
}

type ChatMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type SearchRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required"`
}

type SummarizeRequest struct {
	URL string `json:"url" validate:"required"`
}

type SessionRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Name      string `json:"name,omitempty"`
}

type MessageRequest struct {
	SessionId string   `json:"session_id" validate:"required"`
	Role      string   `json:"role" validate:"required"`
	Content   string   `json:"content" validate:"required"`
	Thinking  []string `json:"thinking,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
