package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/data/redisStore"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

const sessionSetKey = "sessions"

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	return &RedisSessionStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisChatStore),
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) CreateSession(ctx context.Context, session chatModel.ChatSession) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", session.SessionId)
	log.Debug("saving session")
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err = s.store.Set(ctx, sessionKey(session.SessionId), data, config.RedisChatStoreTTL); err != nil {
		return err
	}
	if err = s.store.SetAdd(ctx, sessionSetKey, session.SessionId); err != nil {
		return err
	}
	log.Debug("Saved session to Redis")
	return nil
}

func (s *RedisSessionStore) GetSessions(ctx context.Context) ([]chatModel.ChatSession, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Debug("listing sessions")

	ids, err := s.store.SetMembers(ctx, sessionSetKey)
	if err != nil {
		return nil, err
	}

	sessions := make([]chatModel.ChatSession, 0, len(ids))
	for _, id := range ids {
		val, err := s.store.Get(ctx, sessionKey(id))
		if s.store.IsNil(err) {
			// membership set is ahead of the documents, drop the stale entry
			if remErr := s.store.SetRemove(ctx, sessionSetKey, id); remErr != nil {
				log.Error("Error pruning stale session id", "sessionId", id, "error", remErr)
			}
			continue
		} else if err != nil {
			return nil, err
		}

		var session chatModel.ChatSession
		if err := json.Unmarshal([]byte(val), &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	// SMembers order is arbitrary; the UI expects the freshest chat first
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *RedisSessionStore) RenameSession(ctx context.Context, sessionId string, name string) error {
	session, err := s.getSession(ctx, sessionId)
	if err != nil {
		return err
	}
	session.Name = name
	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, sessionKey(sessionId), data, config.RedisChatStoreTTL)
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, sessionId string) error {
	if err := s.store.Del(ctx, sessionKey(sessionId)); err != nil {
		return err
	}
	return s.store.SetRemove(ctx, sessionSetKey, sessionId)
}

func (s *RedisSessionStore) TouchSession(ctx context.Context, sessionId string, at time.Time) error {
	session, err := s.getSession(ctx, sessionId)
	if err != nil {
		return err
	}
	session.UpdatedAt = at
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, sessionKey(sessionId), data, config.RedisChatStoreTTL)
}

func (s *RedisSessionStore) getSession(ctx context.Context, sessionId string) (chatModel.ChatSession, error) {
	var session chatModel.ChatSession
	val, err := s.store.Get(ctx, sessionKey(sessionId))
	if s.store.IsNil(err) {
		return session, errors.New("session document not found")
	} else if err != nil {
		return session, err
	}
	err = json.Unmarshal([]byte(val), &session)
	return session, err
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test session store"),
	}
}
