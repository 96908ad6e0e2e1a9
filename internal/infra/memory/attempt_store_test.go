package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore()

	session := app.NewSession(sampleQuiz(), domain.Attempt{ID: "a1", QuizID: "quiz-1", UserID: "u1", Number: 1})
	store.Put(session)
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected session present")
	}

	// Never completed: abandoning drops it.
	store.DeleteIfAbandoned("a1")
	if _, ok := store.Get("a1"); ok {
		t.Fatalf("expected abandoned session removed")
	}
}

func TestAttemptStoreCountsArchivedAttempts(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()

	count, err := store.CompletedCount(ctx, "quiz-1", "u1")
	if err != nil || count != 0 {
		t.Fatalf("expected zero count, got %d err=%v", count, err)
	}

	now := time.Now()
	if err := store.Archive(ctx, domain.Attempt{ID: "a1", QuizID: "quiz-1", UserID: "u1", Number: 1, CompletedAt: &now}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	count, err = store.CompletedCount(ctx, "quiz-1", "u1")
	if err != nil || count != 1 {
		t.Fatalf("expected count 1, got %d err=%v", count, err)
	}

	// Counts are per (quiz, user).
	count, _ = store.CompletedCount(ctx, "quiz-1", "u2")
	if count != 0 {
		t.Fatalf("expected other user unaffected, got %d", count)
	}
}

type failingArchiver struct{}

func (failingArchiver) RecordAttempt(context.Context, domain.Attempt) error {
	return errors.New("db down")
}

func (failingArchiver) CompletedCount(context.Context, string, string) (int, error) {
	return 0, nil
}

func TestArchiveFailureDoesNotCount(t *testing.T) {
	store := NewAttemptStore().WithArchiver(failingArchiver{})
	ctx := context.Background()

	err := store.Archive(ctx, domain.Attempt{ID: "a1", QuizID: "quiz-1", UserID: "u1"})
	if err == nil {
		t.Fatalf("expected archiver failure to propagate")
	}
	if count, _ := store.CompletedCount(ctx, "quiz-1", "u1"); count != 0 {
		t.Fatalf("failed archive must not count, got %d", count)
	}
}

type recordingArchiver struct {
	counts map[string]int
}

func (a *recordingArchiver) RecordAttempt(_ context.Context, attempt domain.Attempt) error {
	a.counts[attempt.QuizID+"/"+attempt.UserID]++
	return nil
}

func (a *recordingArchiver) CompletedCount(_ context.Context, quizID, userID string) (int, error) {
	return a.counts[quizID+"/"+userID], nil
}

// The durable backend is authoritative for the max-attempts gate: a fresh
// store (as after a restart) must still see attempts archived earlier.
func TestCompletedCountDelegatesToArchiver(t *testing.T) {
	archiver := &recordingArchiver{counts: map[string]int{"quiz-1/u1": 2}}
	store := NewAttemptStore().WithArchiver(archiver)
	ctx := context.Background()

	count, err := store.CompletedCount(ctx, "quiz-1", "u1")
	if err != nil || count != 2 {
		t.Fatalf("expected archiver count 2, got %d err=%v", count, err)
	}

	now := time.Now()
	if err := store.Archive(ctx, domain.Attempt{ID: "a1", QuizID: "quiz-1", UserID: "u1", Number: 3, CompletedAt: &now}); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if count, _ := store.CompletedCount(ctx, "quiz-1", "u1"); count != 3 {
		t.Fatalf("expected archiver count 3 after archive, got %d", count)
	}
}
