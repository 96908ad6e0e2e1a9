package app

import (
	"sort"
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
)

// SessionState is the lifecycle phase of one attempt session.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateSubmitting SessionState = "submitting"
	StateCompleted  SessionState = "completed"
)

// EventType tags events pushed to session subscribers.
type EventType string

const (
	// EventTick carries the remaining seconds after a countdown tick.
	EventTick EventType = "tick"
	// EventCompleted carries the scored attempt once it is final.
	EventCompleted EventType = "completed"
)

// Event is a session notification for transports watching an attempt.
type Event struct {
	Type             EventType
	RemainingSeconds int
	Attempt          domain.Attempt
}

// AttemptSession drives one attempt through
// NotStarted -> InProgress -> Submitting -> Completed. It owns the answer
// capture buffer and the countdown state; all transitions are guarded by the
// session mutex so only the first submit trigger (manual or timer) wins.
type AttemptSession struct {
	quiz    domain.Quiz
	attempt domain.Attempt
	now     func() time.Time

	mu          sync.Mutex
	state       SessionState
	responses   map[string]domain.CapturedResponse
	remaining   int
	stopTimer   chan struct{}
	stopOnce    sync.Once
	subscribers map[chan Event]struct{}
}

// NewSession is exported for infrastructure layers and tests that need to
// seed sessions directly.
func NewSession(quiz domain.Quiz, attempt domain.Attempt) *AttemptSession {
	return newAttemptSessionWithClock(quiz, attempt, time.Now)
}

// newAttemptSessionWithClock allows deterministic timestamps in tests.
func newAttemptSessionWithClock(quiz domain.Quiz, attempt domain.Attempt, now func() time.Time) *AttemptSession {
	return &AttemptSession{
		quiz:        quiz,
		attempt:     attempt,
		now:         now,
		state:       StateNotStarted,
		responses:   make(map[string]domain.CapturedResponse),
		stopTimer:   make(chan struct{}),
		subscribers: make(map[chan Event]struct{}),
	}
}

// AttemptID returns the attempt identity this session owns.
func (s *AttemptSession) AttemptID() string {
	return s.attempt.ID
}

// State returns the current lifecycle phase.
func (s *AttemptSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the seconds left on the countdown.
func (s *AttemptSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Attempt returns a copy of the attempt record in its current form.
func (s *AttemptSession) Attempt() domain.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Quiz returns the definition bound to this attempt.
func (s *AttemptSession) Quiz() domain.Quiz {
	return s.quiz
}

// begin starts the attempt: the allotted seconds are computed here, at the
// moment the test-taker confirms, not when the quiz was fetched.
func (s *AttemptSession) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateNotStarted {
		return domain.ErrAttemptCompleted
	}
	s.state = StateInProgress
	s.attempt.StartedAt = s.now()
	s.remaining = s.quiz.TimeLimitMinutes * 60
	return nil
}

// capture stores or overwrites the response for one question. Re-answering
// replaces the previous entry; unrelated entries are never touched.
func (s *AttemptSession) capture(resp domain.CapturedResponse) (answered, total int, err error) {
	question, ok := s.quiz.QuestionByID(resp.QuestionID)
	if !ok {
		return 0, 0, domain.ErrQuestionNotFound
	}

	switch question.Type {
	case domain.MultipleChoice:
		opt, ok := question.OptionByID(resp.OptionID)
		if !ok {
			return 0, 0, domain.ErrOptionNotFound
		}
		// Keep a denormalized copy of the display text for the payload;
		// correctness is still decided against the definition store.
		resp.Value = opt.Text
	case domain.TrueFalse:
		if !domain.ValidLiteral(resp.Value) {
			return 0, 0, domain.ErrInvalidResponse
		}
		resp.OptionID = ""
	case domain.ShortAnswer:
		resp.OptionID = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateInProgress:
	case StateNotStarted:
		return 0, 0, domain.ErrAttemptNotStarted
	case StateSubmitting:
		return 0, 0, domain.ErrSubmitInFlight
	default:
		return 0, 0, domain.ErrAttemptCompleted
	}

	s.responses[resp.QuestionID] = resp
	return len(s.responses), len(s.quiz.Questions), nil
}

// beginSubmit transitions InProgress -> Submitting and freezes the buffer.
// The returned map is exactly the set of responses captured at the instant of
// the transition; nothing captured afterwards is included. A second caller
// gets ErrSubmitInFlight (or ErrAttemptCompleted once scored) and must no-op.
func (s *AttemptSession) beginSubmit() (map[string]domain.CapturedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateInProgress:
	case StateNotStarted:
		return nil, domain.ErrAttemptNotStarted
	case StateSubmitting:
		return nil, domain.ErrSubmitInFlight
	default:
		return nil, domain.ErrAttemptCompleted
	}
	s.state = StateSubmitting

	frozen := make(map[string]domain.CapturedResponse, len(s.responses))
	for id, resp := range s.responses {
		frozen[id] = resp
	}
	return frozen, nil
}

// abortSubmit returns a failed submission to InProgress. The capture buffer
// is untouched, so the test-taker can retry.
func (s *AttemptSession) abortSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		s.state = StateInProgress
	}
}

// finish records the scored attempt, enters the terminal state and tears the
// countdown down. There is no backward transition out of Completed.
func (s *AttemptSession) finish(scored domain.Attempt) {
	s.mu.Lock()
	s.attempt = scored
	s.state = StateCompleted
	s.broadcastLocked(Event{Type: EventCompleted, Attempt: scored})
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stopTimer) })
}

// tick advances the countdown by one second. expired is reported only on the
// transition to zero, so forced submission triggers exactly once however long
// ticking continues. The clock is paused, not stopped, while a submission is
// in flight.
func (s *AttemptSession) tick() (remaining int, expired, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateInProgress:
	case StateSubmitting:
		return s.remaining, false, true
	default:
		return s.remaining, false, false
	}

	if s.remaining > 0 {
		s.remaining--
		expired = s.remaining == 0
	}
	s.broadcastLocked(Event{Type: EventTick, RemainingSeconds: s.remaining})
	return s.remaining, expired, true
}

// subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *AttemptSession) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *AttemptSession) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event so slow consumers never block the session.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// orderedQuestions returns the quiz questions sorted by ordinal.
func orderedQuestions(quiz domain.Quiz) []domain.Question {
	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Ordinal < questions[j].Ordinal
	})
	return questions
}
