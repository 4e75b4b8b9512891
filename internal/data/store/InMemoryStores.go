package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Store")

// InMemorySessionStore backs sessions when Redis is offline. Contents are
// lost on restart.
type InMemorySessionStore struct {
	mu       *sync.RWMutex
	sessions map[string]chatModel.ChatSession
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		mu:       new(sync.RWMutex),
		sessions: make(map[string]chatModel.ChatSession),
	}
}

func (store *InMemorySessionStore) CreateSession(ctx context.Context, session chatModel.ChatSession) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[session.SessionId] = session
	inMemLogger.Debug("Saved session", "sessionId", session.SessionId)
	return nil
}

func (store *InMemorySessionStore) GetSessions(ctx context.Context) ([]chatModel.ChatSession, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	result := make([]chatModel.ChatSession, 0, len(store.sessions))
	for _, s := range store.sessions {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (store *InMemorySessionStore) RenameSession(ctx context.Context, sessionId string, name string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, found := store.sessions[sessionId]
	if !found {
		return errors.New("session document not found")
	}
	session.Name = name
	session.UpdatedAt = time.Now()
	store.sessions[sessionId] = session
	return nil
}

func (store *InMemorySessionStore) DeleteSession(ctx context.Context, sessionId string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, sessionId)
	return nil
}

func (store *InMemorySessionStore) TouchSession(ctx context.Context, sessionId string, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, found := store.sessions[sessionId]
	if !found {
		return errors.New("session document not found")
	}
	session.UpdatedAt = at
	store.sessions[sessionId] = session
	return nil
}

type InMemoryMessageStore struct {
	mu       *sync.RWMutex
	messages map[string][]chatModel.ChatMessage
}

func InitInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		mu:       new(sync.RWMutex),
		messages: make(map[string][]chatModel.ChatMessage),
	}
}

func (store *InMemoryMessageStore) SaveMessage(ctx context.Context, message chatModel.ChatMessage) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.messages[message.SessionId] = append(store.messages[message.SessionId], message)
	return nil
}

func (store *InMemoryMessageStore) GetMessages(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	history := store.messages[sessionId]
	result := make([]chatModel.ChatMessage, len(history))
	copy(result, history)
	return result, nil
}

func (store *InMemoryMessageStore) ClearMessages(ctx context.Context, sessionId string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.messages, sessionId)
	return nil
}

type InMemoryUserStore struct {
	mu      *sync.RWMutex
	users   map[string]chatModel.User
	byEmail map[string]string
}

func InitInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		mu:      new(sync.RWMutex),
		users:   make(map[string]chatModel.User),
		byEmail: make(map[string]string),
	}
}

func (store *InMemoryUserStore) CreateUser(ctx context.Context, user chatModel.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.users[user.Id] = user
	store.byEmail[user.Email] = user.Id
	return nil
}

func (store *InMemoryUserStore) GetUserByEmail(ctx context.Context, email string) (chatModel.User, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	id, found := store.byEmail[email]
	if !found {
		return chatModel.User{}, false, nil
	}
	user, found := store.users[id]
	return user, found, nil
}

func (store *InMemoryUserStore) GetUserById(ctx context.Context, id string) (chatModel.User, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	user, found := store.users[id]
	return user, found, nil
}
