package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AnshRaj112/graceway-backend/pkg/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SessionKeyPrefix     = "session:"
	UserSessionKeyPrefix = "user_session:"

	sessionTokenBytes = 32
)

// SessionStore maps opaque bearer tokens to user ids. A user holds at most
// one session; creating a new one revokes the previous token.
type SessionStore interface {
	Create(ctx context.Context, user primitive.ObjectID) (string, error)
	Lookup(ctx context.Context, token string) (primitive.ObjectID, bool, error)
	Revoke(ctx context.Context, token string) error
	RevokeUser(ctx context.Context, user primitive.ObjectID) error
}

type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func (s *RedisSessions) Create(ctx context.Context, user primitive.ObjectID) (string, error) {
	if err := s.RevokeUser(ctx, user); err != nil {
		return "", err
	}
	token, err := utils.GenerateToken(sessionTokenBytes)
	if err != nil {
		return "", err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SessionKeyPrefix+token, user.Hex(), s.ttl)
		pipe.Set(ctx, UserSessionKeyPrefix+user.Hex(), token, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessions) Lookup(ctx context.Context, token string) (primitive.ObjectID, bool, error) {
	if token == "" {
		return primitive.NilObjectID, false, nil
	}
	raw, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, fmt.Errorf("lookup session: %w", err)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false, fmt.Errorf("corrupt session %q: %w", raw, err)
	}
	return id, true, nil
}

func (s *RedisSessions) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	key := SessionKeyPrefix + token
	user, err := s.client.Get(ctx, key).Result()
	if err == nil && user != "" {
		s.client.Del(ctx, UserSessionKeyPrefix+user)
	}
	return s.client.Del(ctx, key).Err()
}

func (s *RedisSessions) RevokeUser(ctx context.Context, user primitive.ObjectID) error {
	userKey := UserSessionKeyPrefix + user.Hex()
	token, err := s.client.Get(ctx, userKey).Result()
	if err == nil && token != "" {
		s.client.Del(ctx, SessionKeyPrefix+token)
	}
	return s.client.Del(ctx, userKey).Err()
}

// MemorySessions backs single-process deployments without Redis.
type MemorySessions struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	tokens map[string]memorySession
	users  map[primitive.ObjectID]string
}

type memorySession struct {
	user    primitive.ObjectID
	expires time.Time
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]memorySession),
		users:  make(map[primitive.ObjectID]string),
	}
}

func (s *MemorySessions) Create(_ context.Context, user primitive.ObjectID) (string, error) {
	token, err := utils.GenerateToken(sessionTokenBytes)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.users[user]; ok {
		delete(s.tokens, old)
	}
	s.tokens[token] = memorySession{user: user, expires: s.now().Add(s.ttl)}
	s.users[user] = token
	return token, nil
}

func (s *MemorySessions) Lookup(_ context.Context, token string) (primitive.ObjectID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.tokens[token]
	if !ok {
		return primitive.NilObjectID, false, nil
	}
	if !s.now().Before(sess.expires) {
		delete(s.tokens, token)
		delete(s.users, sess.user)
		return primitive.NilObjectID, false, nil
	}
	return sess.user, true, nil
}

func (s *MemorySessions) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.tokens[token]; ok {
		delete(s.users, sess.user)
		delete(s.tokens, token)
	}
	return nil
}

func (s *MemorySessions) RevokeUser(_ context.Context, user primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.users[user]; ok {
		delete(s.tokens, token)
		delete(s.users, user)
	}
	return nil
}
