// README: Conversation state stores (Redis JSON with TTL, in-memory).
package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "secrethouse:turn:"

// DefaultStateTTL keeps an idle conversation for a week.
const DefaultStateTTL = 7 * 24 * time.Hour

// StateStore loads and saves TurnState per conversation. A missing
// conversation loads as an empty state. Saves are last-writer-wins.
type StateStore interface {
	Load(ctx context.Context, conversationID string) (TurnState, error)
	Save(ctx context.Context, conversationID string, st TurnState) error
	Delete(ctx context.Context, conversationID string) error
}

type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisStateStore{client: client, ttl: ttl}
}

func (s *RedisStateStore) Load(ctx context.Context, conversationID string) (TurnState, error) {
	data, err := s.client.Get(ctx, statePrefix+conversationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return TurnState{}, nil
	}
	if err != nil {
		return TurnState{}, fmt.Errorf("load turn state: %w", err)
	}
	var st TurnState
	if err := json.Unmarshal(data, &st); err != nil {
		return TurnState{}, fmt.Errorf("decode turn state: %w", err)
	}
	return st, nil
}

func (s *RedisStateStore) Save(ctx context.Context, conversationID string, st TurnState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statePrefix+conversationID, b, s.ttl).Err()
}

func (s *RedisStateStore) Delete(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, statePrefix+conversationID).Err()
}

// MemoryStateStore keeps states as JSON in a map, so loads never alias
// what the caller saved.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string][]byte)}
}

func (s *MemoryStateStore) Load(ctx context.Context, conversationID string) (TurnState, error) {
	s.mu.RLock()
	data, ok := s.states[conversationID]
	s.mu.RUnlock()
	if !ok {
		return TurnState{}, nil
	}
	var st TurnState
	if err := json.Unmarshal(data, &st); err != nil {
		return TurnState{}, err
	}
	return st, nil
}

func (s *MemoryStateStore) Save(ctx context.Context, conversationID string, st TurnState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.states[conversationID] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStateStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.states, conversationID)
	s.mu.Unlock()
	return nil
}
