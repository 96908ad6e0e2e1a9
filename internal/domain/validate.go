package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ConfigError marks a malformed quiz definition. It is a distinct condition
// from a legitimate 0% grading result and is surfaced to instructors, not
// tolerated at grading time.
type ConfigError struct {
	QuizID string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("quiz %s misconfigured: %s", e.QuizID, e.Reason)
}

func configErr(quizID, format string, args ...any) *ConfigError {
	return &ConfigError{QuizID: quizID, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks field-level rules plus the structural invariants that tags
// cannot express: unique ordinals, exactly one correct option per
// multiple_choice question, a defined literal for true_false, and a non-zero
// total point value.
func (q Quiz) Validate() error {
	if err := validate.Struct(q); err != nil {
		return configErr(q.ID, "%v", err)
	}

	seen := make(map[int]string, len(q.Questions))
	for _, question := range q.Questions {
		if prev, ok := seen[question.Ordinal]; ok {
			return configErr(q.ID, "questions %s and %s share ordinal %d", prev, question.ID, question.Ordinal)
		}
		seen[question.Ordinal] = question.ID

		switch question.Type {
		case MultipleChoice:
			if len(question.Options) < 2 {
				return configErr(q.ID, "question %s needs at least two options", question.ID)
			}
			correct := 0
			for _, opt := range question.Options {
				if opt.Correct {
					correct++
				}
			}
			if correct != 1 {
				return configErr(q.ID, "question %s has %d correct options, want exactly one", question.ID, correct)
			}
		case TrueFalse:
			if question.CorrectLiteral != LiteralTrue && question.CorrectLiteral != LiteralFalse {
				return configErr(q.ID, "question %s has no true/false answer defined", question.ID)
			}
			if len(question.Options) != 0 {
				return configErr(q.ID, "question %s is true_false but enumerates options", question.ID)
			}
		case ShortAnswer:
			if len(question.Options) != 0 {
				return configErr(q.ID, "question %s is short_answer but enumerates options", question.ID)
			}
		}
	}

	if q.MaxScore() <= 0 {
		return configErr(q.ID, "total point value is zero")
	}
	return nil
}

// ValidLiteral reports whether v is an accepted true/false response.
func ValidLiteral(v string) bool {
	return v == LiteralTrue || v == LiteralFalse
}
