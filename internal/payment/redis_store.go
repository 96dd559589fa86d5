package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// sessionTTL bounds how long an unused session survives. Well past any
// realistic widget lifetime; terminal outcomes delete entries explicitly.
const sessionTTL = 24 * time.Hour

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type RedisStore struct {
	client *redis.Client
}

func (r *RedisStore) Get(ctx context.Context, orderID string) (*domain.PaymentSession, error) {
	data, err := r.client.Get(ctx, sessionKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var session domain.PaymentSession
	if err2 := json.Unmarshal(data, &session); err2 != nil {
		return nil, fmt.Errorf("unmarshal payment session failed: %w", err2)
	}
	return &session, nil
}

func (r *RedisStore) Put(ctx context.Context, session *domain.PaymentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal payment session failed: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.OrderID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, orderID string) error {
	if err := r.client.Del(ctx, sessionKey(orderID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(orderID string) string {
	return fmt.Sprintf("payment:session:%s", orderID)
}
