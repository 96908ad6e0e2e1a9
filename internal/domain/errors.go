package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrCourseMismatch is returned when a quiz does not belong to the requested course.
	ErrCourseMismatch = errors.New("quiz does not belong to course")
	// ErrAttemptNotFound is returned when no session exists for an attempt ID.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptCompleted rejects mutation or re-submission of a scored attempt.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrAttemptNotStarted is returned when an operation needs a running attempt.
	ErrAttemptNotStarted = errors.New("attempt not started")
	// ErrAttemptNotCompleted is returned when results are requested before scoring.
	ErrAttemptNotCompleted = errors.New("attempt not completed")
	// ErrSubmitInFlight suppresses a second submission while one is being scored.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrAttemptLimitReached is returned when a user has no attempts left on a quiz.
	ErrAttemptLimitReached = errors.New("attempt limit reached")
	// ErrQuestionNotFound indicates a captured response targets an unknown question.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a captured option ID is invalid for the question.
	ErrOptionNotFound = errors.New("answer option not found")
	// ErrInvalidResponse indicates a response value does not fit the question type.
	ErrInvalidResponse = errors.New("invalid response for question type")
)
