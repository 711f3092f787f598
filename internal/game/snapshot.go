package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/quiz-race/internal/game/session"
	"github.com/gokatarajesh/quiz-race/internal/question"
)

const defaultSnapshotTTL = 30 * time.Minute

// Snapshot is the resumable part of a running session.
type Snapshot struct {
	SessionID  uuid.UUID           `json:"session_id"`
	Category   string              `json:"category"`
	Difficulty question.Difficulty `json:"difficulty"`
	State      session.State       `json:"state"`
	SavedAt    time.Time           `json:"saved_at"`
}

// Snapshots persists session snapshots for reconnects.
type Snapshots interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// SnapshotStore keeps snapshots in Redis with a sliding TTL.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Snapshots = (*SnapshotStore)(nil)

// NewSnapshotStore creates a Redis-backed store. A non-positive ttl uses 30m.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("race:session:%s", sessionID.String())
}

// Save overwrites the snapshot and refreshes its TTL.
func (s *SnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(snap.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns nil, nil when no snapshot exists.
func (s *SnapshotStore) Load(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes a snapshot. Missing keys are not an error.
func (s *SnapshotStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.client.Del(ctx, snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
