package rag

import (
	"sync"
	"time"

	"github.com/nvaruna/RagChatServer/internal/metrics"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

// ConversationTurn is one question/answer exchange. Turns are append-only
// and ordered oldest first.
type ConversationTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session ties a retrieval index, its query pipeline and the conversation
// history together. All fields are guarded by the registry's per-session
// lock, not by the Session itself.
type Session struct {
	index    vectorDB.SessionIndex
	pipeline *Pipeline
	history  []ConversationTurn
	lastUsed time.Time
}

func newSession(index vectorDB.SessionIndex, pipeline *Pipeline) *Session {
	return &Session{
		index:    index,
		pipeline: pipeline,
		history:  make([]ConversationTurn, 0),
		lastUsed: time.Now(),
	}
}

func (s *Session) snapshotHistory() []ConversationTurn {
	out := make([]ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// historyLines renders the history the way the prompts expect it.
func (s *Session) historyLines() []string {
	lines := make([]string, 0, len(s.history)*2)
	for _, t := range s.history {
		lines = append(lines, "Human: "+t.Question, "Assistant: "+t.Answer)
	}
	return lines
}

// Registry owns the sessionId -> Session mapping. It is an injected
// dependency of the RAG service, holds at most capacity sessions and
// reclaims the least recently used one past that. Registering an existing
// identifier replaces the session outright (overwrite, never merge).
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sessionLock
	capacity int
	logger   *logger_i.Logger
}

// sessionLock counts holders and waiters so the registry can tell when an
// entry for a gone session is safe to drop.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sessionLock),
		capacity: capacity,
		logger:   logger_i.NewLogger("SessionRegistry"),
	}
}

// LockSession serializes ingestion and query operations for one session
// identifier. Returns the unlock function. The lock entry is reclaimed
// once the session is gone and the last holder has unlocked.
func (r *Registry) LockSession(sessionId string) func() {
	r.mu.Lock()
	lock, ok := r.locks[sessionId]
	if !ok {
		lock = new(sessionLock)
		r.locks[sessionId] = lock
	}
	lock.refs++
	r.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		r.mu.Lock()
		lock.refs--
		r.dropIdleLock(sessionId)
		r.mu.Unlock()
	}
}

// dropIdleLock runs with r.mu held.
func (r *Registry) dropIdleLock(sessionId string) {
	if _, live := r.sessions[sessionId]; live {
		return
	}
	if lock, ok := r.locks[sessionId]; ok && lock.refs == 0 {
		delete(r.locks, sessionId)
	}
}

func (r *Registry) Get(sessionId string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionId]
	if ok {
		sess.lastUsed = time.Now()
	}
	return sess, ok
}

// Register inserts or overwrites. The replaced session's index is closed;
// its conversation history is gone with it.
func (r *Registry) Register(sessionId string, sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[sessionId]; ok {
		if err := old.index.Close(); err != nil {
			r.logger.Error("Error closing replaced session index", "session", sessionId, "error", err)
		}
	}
	r.sessions[sessionId] = sess

	if r.capacity > 0 && len(r.sessions) > r.capacity {
		r.evictOldest()
	}
	metrics.SetActiveRagSessions(len(r.sessions))
}

func (r *Registry) Close(sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionId]
	if !ok {
		return nil
	}
	delete(r.sessions, sessionId)
	r.dropIdleLock(sessionId)
	metrics.SetActiveRagSessions(len(r.sessions))
	return sess.index.Close()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// evictOldest runs with r.mu held.
func (r *Registry) evictOldest() {
	var oldestId string
	var oldest time.Time
	for id, sess := range r.sessions {
		if oldestId == "" || sess.lastUsed.Before(oldest) {
			oldestId = id
			oldest = sess.lastUsed
		}
	}
	if oldestId == "" {
		return
	}

	sess := r.sessions[oldestId]
	delete(r.sessions, oldestId)
	r.dropIdleLock(oldestId)
	if err := sess.index.Close(); err != nil {
		r.logger.Error("Error closing evicted session index", "session", oldestId, "error", err)
	}
	r.logger.Info("Reclaimed least recently used session", "session", oldestId)
}
