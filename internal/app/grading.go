package app

import (
	"quiz-attempt-service/internal/domain"
)

// gradeResponses runs the scoring pass: each captured response is compared
// against the quiz definition, producing a per-question verdict in ordinal
// order and the aggregate score. It is deterministic and independent of the
// order answers were captured in. Unanswered questions score zero.
func gradeResponses(quiz domain.Quiz, responses map[string]domain.CapturedResponse) ([]domain.QuestionResult, int) {
	results := make([]domain.QuestionResult, 0, len(quiz.Questions))
	score := 0

	for _, question := range orderedQuestions(quiz) {
		result := domain.QuestionResult{
			QuestionID: question.ID,
			Feedback:   question.Feedback,
		}

		resp, answered := responses[question.ID]
		if answered {
			result.Submitted = resp.Value

			switch question.Type {
			case domain.MultipleChoice:
				// Full credit or none; no partial credit.
				if correct, ok := question.CorrectOption(); ok && resp.OptionID == correct.ID {
					result.Correct = true
					result.Awarded = question.Points
				}
			case domain.TrueFalse:
				if resp.Value == question.CorrectLiteral {
					result.Correct = true
					result.Awarded = question.Points
				}
			case domain.ShortAnswer:
				// Free text is never auto-scored by equality; it stays at
				// zero points until an external manual review step.
				result.NeedsReview = true
			}
		}

		score += result.Awarded
		results = append(results, result)
	}
	return results, score
}

// scoreAttempt produces the immutable, scored form of an attempt.
// quiz.Validate has already rejected zero-point quizzes, so a zero MaxScore
// here is a misconfiguration, never a silent division by zero.
func scoreAttempt(quiz domain.Quiz, attempt domain.Attempt, responses map[string]domain.CapturedResponse) (domain.Attempt, error) {
	maxScore := quiz.MaxScore()
	if maxScore <= 0 {
		return domain.Attempt{}, &domain.ConfigError{QuizID: quiz.ID, Reason: "total point value is zero"}
	}

	results, score := gradeResponses(quiz, responses)

	attempt.Score = score
	attempt.MaxScore = maxScore
	attempt.Percent = float64(score) * 100 / float64(maxScore)
	attempt.Passed = attempt.Percent >= float64(quiz.PassPercent)
	attempt.Results = results
	return attempt, nil
}
