package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps conversation state in Redis so a restart does not
// drop in-flight flows. One JSON blob per actor, no expiry: a stale
// AwaitingReceipt binding is recovered by the conversation service,
// not by a TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(actorID int64) string {
	return fmt.Sprintf("session:%d", actorID)
}

func (r *RedisStore) Get(ctx context.Context, actorID int64) (State, error) {
	raw, err := r.client.Get(ctx, sessionKey(actorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Idle(), nil
	}
	if err != nil {
		return Idle(), fmt.Errorf("load session %d: %w", actorID, err)
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		// Unreadable state is treated as no state.
		return Idle(), nil
	}
	return s, nil
}

func (r *RedisStore) Set(ctx context.Context, actorID int64, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", actorID, err)
	}
	if err := r.client.Set(ctx, sessionKey(actorID), raw, 0).Err(); err != nil {
		return fmt.Errorf("store session %d: %w", actorID, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, actorID int64) error {
	if err := r.client.Del(ctx, sessionKey(actorID)).Err(); err != nil {
		return fmt.Errorf("clear session %d: %w", actorID, err)
	}
	return nil
}
