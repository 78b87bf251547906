package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anonbox/internal/session"

	"github.com/go-redis/redis/v8"
)

const redisSessionPrefix = "anonbox:session:"

// SessionRedis stores each session under a key whose TTL is the remaining
// absolute lifetime, so Redis expires it on its own.
type SessionRedis struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewSessionRedis(client redis.UniversalClient) *SessionRedis {
	return &SessionRedis{client: client, now: time.Now}
}

var _ session.Store = (*SessionRedis)(nil)

func redisSessionKey(id string) string {
	return redisSessionPrefix + id
}

func (r *SessionRedis) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := r.client.Get(ctx, redisSessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	s, err := session.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if s.Expired(r.now()) {
		return nil, nil
	}
	return s, nil
}

func (r *SessionRedis) Save(ctx context.Context, s *session.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, s.ID)
	}
	data, err := session.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisSessionKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *SessionRedis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
