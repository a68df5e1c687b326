package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
	redisclient "github.com/maisonnoor/boutique-backend/pkg/redis"
)

// ErrSessionNotFound marks a session id with no persisted snapshot.
var ErrSessionNotFound = errors.New("session not found")

// Snapshot is the persisted principal state. Exactly one role is stored per
// session; the expiry mirrors the JWT expiry so both die together.
type Snapshot struct {
	SessionID   string     `json:"session_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        enums.Role `json:"role"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// Expired reports whether the snapshot has outlived its window.
func (s Snapshot) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager persists principal snapshots in Redis with the session expiry as TTL.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
}

// Checker is the read-only surface middleware needs.
type Checker interface {
	Get(ctx context.Context, sessionID string) (*Snapshot, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Manager{store: client, keyer: client}, nil
}

// Persist stores the snapshot until its expiry.
func (m *Manager) Persist(ctx context.Context, snapshot Snapshot) error {
	if strings.TrimSpace(snapshot.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	ttl := time.Until(snapshot.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session expiry must be in the future")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}
	return m.store.Set(ctx, m.keyer.SessionKey(snapshot.SessionID), payload, ttl)
}

// Get loads a snapshot by session id.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if redisclient.IsMiss(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("decoding session snapshot: %w", err)
	}
	return &snapshot, nil
}

// Revoke deletes the persisted snapshot. Used on logout and as the
// compensating action when an authorization record is missing after sign-in.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// NewSessionID produces the identifier used as the JWT jti and Redis key.
func NewSessionID() string {
	return uuid.NewString()
}
