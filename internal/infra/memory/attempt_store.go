package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// Archiver is an optional durable backend for scored attempts (e.g.
// Postgres). It both stores them and answers how many exist, so the
// max-attempts gate survives process restarts.
type Archiver interface {
	RecordAttempt(ctx context.Context, attempt domain.Attempt) error
	CompletedCount(ctx context.Context, quizID, userID string) (int, error)
}

// AttemptStore is an in-memory implementation of app.AttemptStore. Live
// sessions and completed attempts are kept per process; an optional archiver
// forwards completed attempts to durable storage.
type AttemptStore struct {
	archiver Archiver

	mu        sync.RWMutex
	sessions  map[string]*app.AttemptSession
	completed map[attemptKey]int
}

type attemptKey struct {
	quizID string
	userID string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		sessions:  make(map[string]*app.AttemptSession),
		completed: make(map[attemptKey]int),
	}
}

// WithArchiver attaches a durable sink for scored attempts.
func (s *AttemptStore) WithArchiver(archiver Archiver) *AttemptStore {
	s.archiver = archiver
	return s
}

func (s *AttemptStore) Put(session *app.AttemptSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.AttemptID()] = session
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
	}
}

// CompletedCount consults the archiver when one is configured; its count
// includes attempts archived before this process started. Without one the
// in-process tally is authoritative.
func (s *AttemptStore) CompletedCount(ctx context.Context, quizID, userID string) (int, error) {
	if s.archiver != nil {
		return s.archiver.CompletedCount(ctx, quizID, userID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed[attemptKey{quizID: quizID, userID: userID}], nil
}

// Archive counts the scored attempt against the user's quota and forwards it
// to the archiver when one is configured. The count only moves after the
// archiver accepts the attempt, so a failed write stays retryable.
func (s *AttemptStore) Archive(ctx context.Context, attempt domain.Attempt) error {
	if s.archiver != nil {
		if err := s.archiver.RecordAttempt(ctx, attempt); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[attemptKey{quizID: attempt.QuizID, userID: attempt.UserID}]++
	return nil
}
