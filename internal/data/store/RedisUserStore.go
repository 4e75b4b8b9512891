package store

import (
	"context"
	"encoding/json"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/data/redisStore"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

func userKey(id string) string {
	return "user:" + id
}

func userEmailKey(email string) string {
	return "user:email:" + email
}

type RedisUserStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisUserStore(ctx context.Context) *RedisUserStore {
	return &RedisUserStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisUserStore),
		logger: logger_i.NewLogger("UserStore"),
	}
}

func (s *RedisUserStore) CreateUser(ctx context.Context, user chatModel.User) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "user Id", user.Id)
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	if err = s.store.Set(ctx, userKey(user.Id), data, 0); err != nil {
		return err
	}
	// lookup by email resolves to the user id
	if err = s.store.Set(ctx, userEmailKey(user.Email), user.Id, 0); err != nil {
		return err
	}
	log.Debug("Saved user to Redis")
	return nil
}

func (s *RedisUserStore) GetUserByEmail(ctx context.Context, email string) (chatModel.User, bool, error) {
	var user chatModel.User
	id, err := s.store.Get(ctx, userEmailKey(email))
	if s.store.IsNil(err) {
		return user, false, nil
	} else if err != nil {
		s.logger.Error("Error resolving user email", "error", err)
		return user, false, err
	}
	return s.GetUserById(ctx, id)
}

func (s *RedisUserStore) GetUserById(ctx context.Context, id string) (chatModel.User, bool, error) {
	var user chatModel.User
	val, err := s.store.Get(ctx, userKey(id))
	if s.store.IsNil(err) {
		return user, false, nil
	} else if err != nil {
		s.logger.Error("Error getting user", "error", err)
		return user, false, err
	}
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		s.logger.Error("Error unmarshalling user", "error", err)
		return user, false, err
	}
	return user, true, nil
}

func TestUserStore(store *redisStore.Store) *RedisUserStore {
	return &RedisUserStore{
		store:  store,
		logger: logger_i.NewLogger("test user store"),
	}
}
