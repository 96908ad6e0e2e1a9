package domain

import "time"

// QuestionType discriminates how a question is presented and graded.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

// Literals accepted as a true/false response.
const (
	LiteralTrue  = "True"
	LiteralFalse = "False"
)

// AnswerOption is one candidate answer for a multiple_choice question.
type AnswerOption struct {
	ID      string `json:"id" validate:"required"`
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"correct"`
}

// Question belongs to exactly one quiz. Ordinal defines presentation order
// and is unique within the quiz.
type Question struct {
	ID             string         `json:"id" validate:"required"`
	Ordinal        int            `json:"ordinal" validate:"gte=1"`
	Text           string         `json:"text" validate:"required"`
	Type           QuestionType   `json:"type" validate:"required,oneof=multiple_choice true_false short_answer"`
	Points         int            `json:"points" validate:"gt=0"`
	Options        []AnswerOption `json:"options,omitempty" validate:"dive"`
	CorrectLiteral string         `json:"correctLiteral,omitempty"`
	Feedback       string         `json:"feedback,omitempty"`
}

// Quiz is the definition a test-taker attempts. It belongs to exactly one
// course and is treated as read-only while an attempt is in progress.
type Quiz struct {
	ID               string     `json:"id" validate:"required"`
	CourseID         string     `json:"courseId" validate:"required"`
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description,omitempty"`
	TimeLimitMinutes int        `json:"timeLimitMinutes" validate:"gt=0"`
	PassPercent      int        `json:"passPercent" validate:"gte=0,lte=100"`
	MaxAttempts      int        `json:"maxAttempts" validate:"gte=1"`
	Questions        []Question `json:"questions" validate:"min=1,dive"`
}

// MaxScore is the sum of all question point values.
func (q Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// QuestionByID returns the question with the given ID, if any.
func (q Quiz) QuestionByID(questionID string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == questionID {
			return question, true
		}
	}
	return Question{}, false
}

// CorrectOption returns the option flagged correct on a multiple_choice question.
func (q Question) CorrectOption() (AnswerOption, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt, true
		}
	}
	return AnswerOption{}, false
}

// OptionByID returns the option with the given ID, if any.
func (q Question) OptionByID(optionID string) (AnswerOption, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return AnswerOption{}, false
}

// CapturedResponse is the test-taker's current, unscored answer for one
// question. OptionID is set for multiple_choice; Value holds the literal
// "True"/"False" for true_false, free text for short_answer, and a
// denormalized copy of the option text for multiple_choice.
type CapturedResponse struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId,omitempty"`
	Value      string `json:"value,omitempty"`
}

// QuestionResult is the per-question verdict of a scoring pass.
type QuestionResult struct {
	QuestionID  string `json:"questionId"`
	Submitted   string `json:"submitted"`
	Correct     bool   `json:"correct"`
	Awarded     int    `json:"awarded"`
	NeedsReview bool   `json:"needsReview,omitempty"`
	Feedback    string `json:"feedback,omitempty"`
}

// Attempt is one test-taker's pass through a quiz. It is mutated only by the
// test-taker's answer edits and the one-time scoring pass, and becomes
// immutable once CompletedAt is set.
type Attempt struct {
	ID          string           `json:"id"`
	QuizID      string           `json:"quizId"`
	CourseID    string           `json:"courseId"`
	UserID      string           `json:"userId"`
	Number      int              `json:"number"`
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"maxScore"`
	Percent     float64          `json:"percent"`
	Passed      bool             `json:"passed"`
	Results     []QuestionResult `json:"results,omitempty"`
}

// Completed reports whether the attempt has been scored.
func (a Attempt) Completed() bool {
	return a.CompletedAt != nil
}
