package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// AttemptStore is a Redis-aware implementation of app.AttemptStore.
// Notes:
//   - Live sessions stay in a local map: the countdown and capture buffer are
//     owned by exactly one process for the life of an attempt.
//   - Redis marks live attempts (liveness keys), archives scored attempts as
//     JSON under attempt:{id}, and keeps the per-(quiz,user) completed
//     counter that backs the max-attempts gate across instances.
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.AttemptSession
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.AttemptSession),
	}
}

func (s *AttemptStore) Put(session *app.AttemptSession) {
	s.mu.Lock()
	s.sessions[session.AttemptID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.liveKey(session.AttemptID()), "1", s.ttl).Err()
}

func (s *AttemptStore) Get(attemptID string) (*app.AttemptSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[attemptID]
	return session, ok
}

func (s *AttemptStore) DeleteIfAbandoned(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[attemptID]
	if !ok {
		return
	}
	if !session.Attempt().Completed() {
		delete(s.sessions, attemptID)
		_ = s.client.Del(context.Background(), s.liveKey(attemptID)).Err()
	}
}

func (s *AttemptStore) CompletedCount(ctx context.Context, quizID, userID string) (int, error) {
	count, err := s.client.Get(ctx, s.countKey(quizID, userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read attempt count: %w", err)
	}
	return count, nil
}

// Archive stores the scored attempt and bumps the completed counter in one
// pipeline. The liveness marker is dropped; the archived record is the
// durable fact from here on.
func (s *AttemptStore) Archive(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.attemptKey(attempt.ID), data, s.ttl)
	pipe.Incr(ctx, s.countKey(attempt.QuizID, attempt.UserID))
	pipe.Del(ctx, s.liveKey(attempt.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive attempt: %w", err)
	}
	return nil
}

// LoadArchived reads a previously archived attempt.
func (s *AttemptStore) LoadArchived(ctx context.Context, attemptID string) (domain.Attempt, error) {
	raw, err := s.client.Get(ctx, s.attemptKey(attemptID)).Bytes()
	if err == redis.Nil {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("load attempt: %w", err)
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) liveKey(attemptID string) string {
	return "attempt:live:" + attemptID
}

func (s *AttemptStore) attemptKey(attemptID string) string {
	return "attempt:" + attemptID
}

func (s *AttemptStore) countKey(quizID, userID string) string {
	return "quiz:" + quizID + ":attempts:" + userID
}
