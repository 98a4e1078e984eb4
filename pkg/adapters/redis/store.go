package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/cadence/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "cadence:history:"

// noExpiryScore is the index score of histories without TTL (2100-01-01).
const noExpiryScore = 4102444800

// Store implements ports.HistoryStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for histories.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for histories.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying client, shared with lockers.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(docID string) string {
	return s.prefix + docID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the history to Redis.
func (s *Store) Save(ctx context.Context, docID string, h *ports.History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(docID), data, s.ttl)

	// The index score is the expiry time so that List can prune lazily.
	score := float64(s.now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: docID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the history from Redis.
func (s *Store) Load(ctx context.Context, docID string) (*ports.History, error) {
	val, err := s.client.Get(ctx, s.key(docID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ports.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var h ports.History
	if err := json.Unmarshal(val, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &h, nil
}

// Delete removes the history.
func (s *Store) Delete(ctx context.Context, docID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(docID))
	pipe.ZRem(ctx, s.indexKey(), docID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored documents, pruning expired ones from the index.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(s.now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired histories: %w", err)
	}

	docs, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}
	return docs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
