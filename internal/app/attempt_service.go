package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/domain"
)

// AttemptStore abstracts how live attempt sessions and completed attempts are
// kept (in-memory, Redis-backed, etc).
type AttemptStore interface {
	Put(session *AttemptSession)
	Get(attemptID string) (*AttemptSession, bool)
	// DeleteIfAbandoned drops a session that never reached Completed.
	DeleteIfAbandoned(attemptID string)
	// CompletedCount returns how many scored attempts the user already has
	// on the quiz; it backs the max-attempts gate.
	CompletedCount(ctx context.Context, quizID, userID string) (int, error)
	// Archive persists a scored attempt. Scoring is exactly-once: a failed
	// archive keeps the session retryable instead of losing the attempt.
	Archive(ctx context.Context, attempt domain.Attempt) error
}

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// StartedAttempt is what a transport needs to present a freshly started attempt.
type StartedAttempt struct {
	Attempt          domain.Attempt
	Quiz             domain.QuizView
	RemainingSeconds int
}

// Progress reports answer-capture completeness for display.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// AttemptService contains the quiz attempt use cases: starting a timed
// attempt, capturing answers, submitting for scoring and reading results.
type AttemptService struct {
	quizzes  QuizRepository
	attempts AttemptStore

	clock        func() time.Time
	tickInterval time.Duration
}

func NewAttemptService(attempts AttemptStore, quizzes QuizRepository) *AttemptService {
	return NewAttemptServiceWithClock(attempts, quizzes, time.Now, time.Second)
}

// NewAttemptServiceWithClock is for deterministic timestamps and fast
// countdowns in tests.
func NewAttemptServiceWithClock(attempts AttemptStore, quizzes QuizRepository, clock func() time.Time, tickInterval time.Duration) *AttemptService {
	return &AttemptService{
		quizzes:      quizzes,
		attempts:     attempts,
		clock:        clock,
		tickInterval: tickInterval,
	}
}

// GetQuiz fetches the test-taker's view of a quiz for the pre-start screen.
// A definition whose course does not match the requested one is a fatal
// validation error, never silently accepted.
func (s *AttemptService) GetQuiz(ctx context.Context, courseID, quizID string) (domain.QuizView, error) {
	quiz, err := s.loadQuiz(ctx, courseID, quizID)
	if err != nil {
		return domain.QuizView{}, err
	}
	return quiz.View(), nil
}

// StartAttempt creates one attempt for (user, quiz), transitions it to
// InProgress and starts its countdown. The allotted time is computed now,
// not at fetch time.
func (s *AttemptService) StartAttempt(ctx context.Context, courseID, quizID, userID string) (StartedAttempt, error) {
	quiz, err := s.loadQuiz(ctx, courseID, quizID)
	if err != nil {
		return StartedAttempt{}, err
	}

	prior, err := s.attempts.CompletedCount(ctx, quizID, userID)
	if err != nil {
		return StartedAttempt{}, fmt.Errorf("count attempts: %w", err)
	}
	if prior >= quiz.MaxAttempts {
		return StartedAttempt{}, domain.ErrAttemptLimitReached
	}

	attempt := domain.Attempt{
		ID:       uuid.NewString(),
		QuizID:   quiz.ID,
		CourseID: quiz.CourseID,
		UserID:   userID,
		Number:   prior + 1,
	}
	session := newAttemptSessionWithClock(quiz, attempt, s.clock)
	if err := session.begin(); err != nil {
		return StartedAttempt{}, err
	}
	s.attempts.Put(session)
	go s.runTimer(session)

	return StartedAttempt{
		Attempt:          session.Attempt(),
		Quiz:             quiz.View(),
		RemainingSeconds: session.Remaining(),
	}, nil
}

// SaveAnswer captures or overwrites the response for one question of a
// running attempt. Navigation is free; nothing here blocks on completeness.
func (s *AttemptService) SaveAnswer(ctx context.Context, attemptID string, resp domain.CapturedResponse) (Progress, error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return Progress{}, domain.ErrAttemptNotFound
	}
	answered, total, err := session.capture(resp)
	if err != nil {
		return Progress{}, err
	}
	return Progress{Answered: answered, Total: total}, nil
}

// Submit freezes the capture buffer, runs the scoring pass and archives the
// attempt. The InProgress -> Submitting guard makes the first trigger win;
// concurrent manual submits and timer expiry collapse to exactly one scored
// attempt. On a transient archive failure the session returns to InProgress
// with the buffer intact, so submission is retryable while scoring itself
// remains exactly-once.
func (s *AttemptService) Submit(ctx context.Context, attemptID string) (domain.Attempt, error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}

	frozen, err := session.beginSubmit()
	if err != nil {
		return domain.Attempt{}, err
	}

	scored, err := scoreAttempt(session.Quiz(), session.Attempt(), frozen)
	if err != nil {
		session.abortSubmit()
		return domain.Attempt{}, err
	}
	completedAt := s.clock()
	scored.CompletedAt = &completedAt

	if err := s.attempts.Archive(ctx, scored); err != nil {
		session.abortSubmit()
		return domain.Attempt{}, fmt.Errorf("archive attempt: %w", err)
	}

	session.finish(scored)
	return scored, nil
}

// Results returns the scored attempt for the read-only result screen.
func (s *AttemptService) Results(_ context.Context, attemptID string) (domain.Attempt, error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	attempt := session.Attempt()
	if !attempt.Completed() {
		return domain.Attempt{}, domain.ErrAttemptNotCompleted
	}
	return attempt, nil
}

// Subscribe returns a channel with countdown ticks and the completion event
// for an attempt. The caller must invoke the cancel function to avoid leaks.
func (s *AttemptService) Subscribe(_ context.Context, attemptID string) (<-chan Event, func(), error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, nil, domain.ErrAttemptNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Abandon drops an attempt that was never submitted. Captured responses are
// process memory only, so abandoning loses them; the attempt simply stays
// absent server-side.
func (s *AttemptService) Abandon(_ context.Context, attemptID string) {
	s.attempts.DeleteIfAbandoned(attemptID)
}

// loadQuiz fetches and validates a definition bound to a course context.
func (s *AttemptService) loadQuiz(ctx context.Context, courseID, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.CourseID != courseID {
		return domain.Quiz{}, domain.ErrCourseMismatch
	}
	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// runTimer drives the session countdown at one tick per interval. When the
// countdown hits zero it forces exactly one submission with whatever has been
// captured; after that, or once the session leaves its live states, the timer
// goroutine exits. Manual submission tears it down via the session stop channel.
func (s *AttemptService) runTimer(session *AttemptSession) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, expired, active := session.tick()
			if expired {
				if _, err := s.Submit(context.Background(), session.AttemptID()); err != nil {
					log.Printf("forced submit of attempt %s: %v", session.AttemptID(), err)
				}
				return
			}
			if !active {
				return
			}
		case <-session.stopTimer:
			return
		}
	}
}
