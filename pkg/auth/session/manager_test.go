package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/fleetstock-backend/pkg/config"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(sessionID string) string {
	return fmt.Sprintf("sess:%s", sessionID)
}

func newTestManager(t *testing.T, store *mockStore) *Manager {
	t.Helper()
	manager, err := newManager(store, store, config.JWTConfig{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestManagerCreateValidateRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(t, store)
	ctx := context.Background()
	userID := uuid.New()

	sessionID, err := manager.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if stored := store.data[store.SessionKey(sessionID)]; stored != userID.String() {
		t.Fatalf("expected stored user %s, got %q", userID, stored)
	}

	if err := manager.Validate(ctx, sessionID, uuid.New()); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token for other user, got %v", err)
	}

	newSessionID, err := manager.Rotate(ctx, sessionID, userID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newSessionID == sessionID {
		t.Fatal("rotate must issue a new session id")
	}
	if _, exists := store.data[store.SessionKey(sessionID)]; exists {
		t.Fatal("old session left behind")
	}
	if _, err := manager.Rotate(ctx, sessionID, userID); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected replayed session to be rejected, got %v", err)
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(t, store)
	ctx := context.Background()

	sessionID, err := manager.Create(ctx, uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err := manager.HasSession(ctx, sessionID)
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, sessionID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, sessionID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
}

func TestManagerPropagatesStoreErrors(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("connection refused")
	manager := newTestManager(t, store)

	if _, err := manager.HasSession(context.Background(), "abc"); err == nil {
		t.Fatal("expected store error to surface")
	}
	if err := manager.Validate(context.Background(), "abc", uuid.New()); errors.Is(err, ErrInvalidRefreshToken) || err == nil {
		t.Fatalf("store failure should not look like an invalid token, got %v", err)
	}
}

func TestNewManagerRejectsShortRefreshTTL(t *testing.T) {
	store := newMockStore()
	if _, err := newManager(store, store, config.JWTConfig{AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Minute}); err == nil {
		t.Fatal("expected refresh ttl shorter than access ttl to fail")
	}
}
