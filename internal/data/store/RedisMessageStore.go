package store

import (
	"context"
	"encoding/json"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/data/redisStore"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

func messageKey(sessionId string) string {
	return "messages:" + sessionId
}

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	return &RedisMessageStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisChatStore),
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) SaveMessage(ctx context.Context, message chatModel.ChatMessage) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", message.SessionId)
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err = s.store.ListPush(ctx, messageKey(message.SessionId), data); err != nil {
		log.Error("error saving message", "error:", err)
		return err
	}
	log.Debug("Saved message successfully")
	return nil
}

func (s *RedisMessageStore) GetMessages(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)
	log.Debug("Getting message history")

	raw, err := s.store.ListGetAll(ctx, messageKey(sessionId))
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	messages := make([]chatModel.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var message chatModel.ChatMessage
		if err := json.Unmarshal([]byte(item), &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (s *RedisMessageStore) ClearMessages(ctx context.Context, sessionId string) error {
	return s.store.Del(ctx, messageKey(sessionId))
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test message store"),
	}
}
