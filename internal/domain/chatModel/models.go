package chatModel

import (
	"context"
	"time"
)

type ChatSession struct {
	SessionId string    `json:"session_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessage struct {
	SessionId string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Thinking  []string  `json:"thinking"`
	Timestamp time.Time `json:"timestamp"`
}

type User struct {
	Id           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionStore interface {
	CreateSession(ctx context.Context, session ChatSession) error
	GetSessions(ctx context.Context) ([]ChatSession, error)
	RenameSession(ctx context.Context, sessionId string, name string) error
	// DeleteSession removes the session document; the caller clears messages.
	DeleteSession(ctx context.Context, sessionId string) error
	TouchSession(ctx context.Context, sessionId string, at time.Time) error
}

type MessageStore interface {
	SaveMessage(ctx context.Context, message ChatMessage) error
	GetMessages(ctx context.Context, sessionId string) ([]ChatMessage, error)
	ClearMessages(ctx context.Context, sessionId string) error
}

// UserStore lookups report absence through the bool; a non-nil error means
// the backend failed and says nothing about whether the user exists.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByEmail(ctx context.Context, email string) (User, bool, error)
	GetUserById(ctx context.Context, id string) (User, bool, error)
}
