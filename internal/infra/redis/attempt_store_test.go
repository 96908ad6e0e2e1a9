package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

func TestAttemptStoreMarksLiveAttempts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	session := app.NewSession(sampleQuiz(), domain.Attempt{ID: "a1", QuizID: "quiz-1", UserID: "u1", Number: 1})
	store.Put(session)
	if !mr.Exists("attempt:live:a1") {
		t.Fatalf("expected liveness key to be set")
	}
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected session in local map")
	}

	store.DeleteIfAbandoned("a1")
	if mr.Exists("attempt:live:a1") {
		t.Fatalf("expected liveness key removed on abandon")
	}
	if _, ok := store.Get("a1"); ok {
		t.Fatalf("expected session dropped on abandon")
	}
}

func TestAttemptStoreArchivesAndCounts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()

	count, err := store.CompletedCount(ctx, "quiz-1", "u1")
	if err != nil || count != 0 {
		t.Fatalf("expected zero count, got %d err=%v", count, err)
	}

	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	attempt := domain.Attempt{
		ID: "a1", QuizID: "quiz-1", CourseID: "course-1", UserID: "u1",
		Number: 1, StartedAt: now.Add(-10 * time.Minute), CompletedAt: &now,
		Score: 3, MaxScore: 4, Percent: 75, Passed: true,
		Results: []domain.QuestionResult{
			{QuestionID: "q1", Submitted: "4", Correct: true, Awarded: 2},
		},
	}
	if err := store.Archive(ctx, attempt); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if !mr.Exists("attempt:a1") {
		t.Fatalf("expected archived attempt key")
	}
	count, err = store.CompletedCount(ctx, "quiz-1", "u1")
	if err != nil || count != 1 {
		t.Fatalf("expected count 1, got %d err=%v", count, err)
	}

	loaded, err := store.LoadArchived(ctx, "a1")
	if err != nil {
		t.Fatalf("load archived: %v", err)
	}
	if loaded.Score != 3 || !loaded.Passed || len(loaded.Results) != 1 {
		t.Fatalf("archived attempt did not round-trip: %+v", loaded)
	}
}

func TestLoadArchivedMiss(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	if _, err := store.LoadArchived(context.Background(), "nope"); err != domain.ErrAttemptNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
