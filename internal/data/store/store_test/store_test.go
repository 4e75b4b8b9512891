package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/data/redisStore"
	"github.com/nvaruna/RagChatServer/internal/data/store"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
)

func newTestBackend(t *testing.T) *redisStore.Store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redisStore.NewTestStore(client)
}

func testContext() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	sessionStore := store.TestSessionStore(newTestBackend(t))
	ctx := testContext()

	created := chatModel.ChatSession{
		SessionId: "sess_abc",
		Name:      "My chat",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("Create and List", func(t *testing.T) {
		if err := sessionStore.CreateSession(ctx, created); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		sessions, err := sessionStore.GetSessions(ctx)
		if err != nil {
			t.Fatalf("GetSessions failed: %v", err)
		}
		if len(sessions) != 1 {
			t.Fatalf("GetSessions returned %d sessions; want 1", len(sessions))
		}
		if sessions[0].SessionId != created.SessionId || sessions[0].Name != created.Name {
			t.Errorf("Data mismatch! Got %+v, want %+v", sessions[0], created)
		}
	})

	t.Run("Rename", func(t *testing.T) {
		if err := sessionStore.RenameSession(ctx, created.SessionId, "Renamed"); err != nil {
			t.Fatalf("RenameSession failed: %v", err)
		}
		sessions, _ := sessionStore.GetSessions(ctx)
		if sessions[0].Name != "Renamed" {
			t.Errorf("Name = %q; want Renamed", sessions[0].Name)
		}
	})

	t.Run("Touch bumps UpdatedAt", func(t *testing.T) {
		at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		if err := sessionStore.TouchSession(ctx, created.SessionId, at); err != nil {
			t.Fatalf("TouchSession failed: %v", err)
		}
		sessions, _ := sessionStore.GetSessions(ctx)
		if !sessions[0].UpdatedAt.Equal(at) {
			t.Errorf("UpdatedAt = %v; want %v", sessions[0].UpdatedAt, at)
		}
	})

	t.Run("Rename missing session", func(t *testing.T) {
		if err := sessionStore.RenameSession(ctx, "ghost", "x"); err == nil {
			t.Error("Expected an error renaming a missing session")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := sessionStore.DeleteSession(ctx, created.SessionId); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		sessions, err := sessionStore.GetSessions(ctx)
		if err != nil {
			t.Fatalf("GetSessions failed: %v", err)
		}
		if len(sessions) != 0 {
			t.Errorf("Deleted session still listed: %+v", sessions)
		}
	})
}

func TestRedisSessionStore_ListsNewestFirst(t *testing.T) {
	sessionStore := store.TestSessionStore(newTestBackend(t))
	ctx := testContext()

	base := time.Now().UTC().Truncate(time.Second)
	// creation order deliberately disagrees with recency
	stamps := map[string]time.Time{
		"old":    base.Add(-2 * time.Hour),
		"newest": base,
		"middle": base.Add(-time.Hour),
	}
	for _, id := range []string{"old", "newest", "middle"} {
		session := chatModel.ChatSession{
			SessionId: id,
			Name:      id,
			CreatedAt: stamps[id],
			UpdatedAt: stamps[id],
		}
		if err := sessionStore.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession(%s) failed: %v", id, err)
		}
	}

	sessions, err := sessionStore.GetSessions(ctx)
	if err != nil {
		t.Fatalf("GetSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("GetSessions returned %d sessions; want 3", len(sessions))
	}
	want := []string{"newest", "middle", "old"}
	for i, id := range want {
		if sessions[i].SessionId != id {
			t.Fatalf("sessions[%d] = %q; want %q (full order %+v)", i, sessions[i].SessionId, id, sessions)
		}
	}
}

func TestRedisMessageStore_Lifecycle(t *testing.T) {
	messageStore := store.TestMessageStore(newTestBackend(t))
	ctx := testContext()

	first := chatModel.ChatMessage{
		SessionId: "sess_abc",
		Role:      "user",
		Content:   "How do I mock Redis?",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	second := chatModel.ChatMessage{
		SessionId: "sess_abc",
		Role:      "assistant",
		Content:   "With miniredis.",
		Thinking:  []string{"considered the options"},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("Save and Get keeps order", func(t *testing.T) {
		if err := messageStore.SaveMessage(ctx, first); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
		if err := messageStore.SaveMessage(ctx, second); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}

		messages, err := messageStore.GetMessages(ctx, "sess_abc")
		if err != nil {
			t.Fatalf("GetMessages failed: %v", err)
		}
		if len(messages) != 2 {
			t.Fatalf("GetMessages returned %d; want 2", len(messages))
		}
		if messages[0].Content != first.Content || messages[1].Content != second.Content {
			t.Error("Messages came back out of order")
		}
		if len(messages[1].Thinking) != 1 {
			t.Error("Thinking steps were lost")
		}
	})

	t.Run("Get for empty session", func(t *testing.T) {
		messages, err := messageStore.GetMessages(ctx, "no_such_session")
		if err != nil {
			t.Fatalf("GetMessages failed: %v", err)
		}
		if len(messages) != 0 {
			t.Errorf("Expected no messages, got %d", len(messages))
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if err := messageStore.ClearMessages(ctx, "sess_abc"); err != nil {
			t.Fatalf("ClearMessages failed: %v", err)
		}
		messages, _ := messageStore.GetMessages(ctx, "sess_abc")
		if len(messages) != 0 {
			t.Errorf("Messages survived ClearMessages: %d", len(messages))
		}
	})
}

func TestRedisUserStore_Lifecycle(t *testing.T) {
	userStore := store.TestUserStore(newTestBackend(t))
	ctx := testContext()

	user := chatModel.User{
		Id:           "user-1",
		Email:        "dev@example.com",
		FullName:     "Dev Example",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	if err := userStore.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("Get by id", func(t *testing.T) {
		got, found, err := userStore.GetUserById(ctx, user.Id)
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if !found {
			t.Fatal("User not found by id")
		}
		if got.Email != user.Email {
			t.Errorf("Email = %q; want %q", got.Email, user.Email)
		}
	})

	t.Run("Get by email", func(t *testing.T) {
		got, found, err := userStore.GetUserByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if !found {
			t.Fatal("User not found by email")
		}
		if got.Id != user.Id {
			t.Errorf("Id = %q; want %q", got.Id, user.Id)
		}
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, found, err := userStore.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if found {
			t.Error("Found a user that was never created")
		}
	})
}

func TestRedisUserStore_BackendFailureSurfaces(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	userStore := store.TestUserStore(redisStore.NewTestStore(client))
	ctx := testContext()

	if err := client.Close(); err != nil {
		t.Fatalf("closing client: %v", err)
	}

	// a dead backend must not read as "user does not exist"
	if _, _, err := userStore.GetUserByEmail(ctx, "dev@example.com"); err == nil {
		t.Error("GetUserByEmail returned no error on a closed client")
	}
	if _, _, err := userStore.GetUserById(ctx, "user-1"); err == nil {
		t.Error("GetUserById returned no error on a closed client")
	}
}
