// Package batch tracks the lifecycle of one upload batch: received ->
// processing -> ready | failed. State lives in redis with a TTL; nothing
// here is durable storage, just a parking spot between the upload request,
// the worker, and later result or CSV fetches.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vocalysis/backend/internal/report"
)

type Status string

const (
	StatusReceived   Status = "received"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

var ErrNotFound = errors.New("batch not found")

// Batch is one upload batch's state plus, once ready, its result table.
type Batch struct {
	ID        string        `json:"id"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Files     []string      `json:"files,omitempty"`
	Table     *report.Table `json:"table,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Store persists batch state in redis under a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(id string) string { return "batch:" + id }

func (s *Store) Save(ctx context.Context, b *Batch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	if err := s.client.Set(ctx, key(b.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save batch %s: %w", b.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Batch, error) {
	val, err := s.client.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}

	var b Batch
	if err := json.Unmarshal([]byte(val), &b); err != nil {
		return nil, fmt.Errorf("unmarshal batch %s: %w", id, err)
	}
	return &b, nil
}

// MarkReady stores the finished table and flips the batch to ready.
func (s *Store) MarkReady(ctx context.Context, id string, table *report.Table) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	b.Status = StatusReady
	b.Table = table
	return s.Save(ctx, b)
}

// MarkFailed records a batch-level failure.
func (s *Store) MarkFailed(ctx context.Context, id string, cause error) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	b.Status = StatusFailed
	b.Error = cause.Error()
	return s.Save(ctx, b)
}
