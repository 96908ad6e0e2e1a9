package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/domain"
)

func validQuiz() domain.Quiz {
	return domain.Quiz{
		ID:               "quiz-1",
		CourseID:         "course-1",
		Title:            "Checkpoint",
		TimeLimitMinutes: 15,
		PassPercent:      70,
		MaxAttempts:      2,
		Questions: []domain.Question{
			{
				ID:      "q1",
				Ordinal: 1,
				Text:    "Pick one",
				Type:    domain.MultipleChoice,
				Points:  2,
				Options: []domain.AnswerOption{
					{ID: "o1", Text: "No", Correct: false},
					{ID: "o2", Text: "Yes", Correct: true},
				},
			},
			{
				ID:             "q2",
				Ordinal:        2,
				Text:           "True or false",
				Type:           domain.TrueFalse,
				Points:         1,
				CorrectLiteral: domain.LiteralFalse,
			},
			{
				ID:      "q3",
				Ordinal: 3,
				Text:    "Describe",
				Type:    domain.ShortAnswer,
				Points:  1,
			},
		},
	}
}

func TestValidQuizPasses(t *testing.T) {
	require.NoError(t, validQuiz().Validate())
}

func TestValidateRejectsMalformedQuizzes(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Quiz)
	}{
		{"no questions", func(q *domain.Quiz) { q.Questions = nil }},
		{"zero time limit", func(q *domain.Quiz) { q.TimeLimitMinutes = 0 }},
		{"pass percent above 100", func(q *domain.Quiz) { q.PassPercent = 101 }},
		{"zero max attempts", func(q *domain.Quiz) { q.MaxAttempts = 0 }},
		{"zero point question", func(q *domain.Quiz) { q.Questions[0].Points = 0 }},
		{"duplicate ordinals", func(q *domain.Quiz) { q.Questions[1].Ordinal = 1 }},
		{"no correct option", func(q *domain.Quiz) { q.Questions[0].Options[1].Correct = false }},
		{"two correct options", func(q *domain.Quiz) { q.Questions[0].Options[0].Correct = true }},
		{"single option", func(q *domain.Quiz) { q.Questions[0].Options = q.Questions[0].Options[:1] }},
		{"true_false without defined answer", func(q *domain.Quiz) { q.Questions[1].CorrectLiteral = "" }},
		{"true_false with options", func(q *domain.Quiz) {
			q.Questions[1].Options = []domain.AnswerOption{{ID: "x", Text: "True"}, {ID: "y", Text: "False"}}
		}},
		{"short_answer with options", func(q *domain.Quiz) {
			q.Questions[2].Options = []domain.AnswerOption{{ID: "x", Text: "Any"}, {ID: "y", Text: "Other"}}
		}},
		{"unknown question type", func(q *domain.Quiz) { q.Questions[2].Type = "essay" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := validQuiz()
			tc.mutate(&quiz)
			err := quiz.Validate()
			require.Error(t, err)
			var cfgErr *domain.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestViewHidesCorrectnessData(t *testing.T) {
	view := validQuiz().View()

	require.Len(t, view.Questions, 3)
	for _, question := range view.Questions {
		for _, opt := range question.Options {
			assert.NotEmpty(t, opt.ID)
			assert.NotEmpty(t, opt.Text)
		}
	}
	// The view type carries no correctness fields at all; spot-check the
	// true_false question kept its prompt but not its answer.
	assert.Equal(t, domain.TrueFalse, view.Questions[1].Type)
	assert.Empty(t, view.Questions[1].Options)
}

// Ordinals define presentation order; the backing store makes no ordering
// promise for the stored question list.
func TestViewOrdersQuestionsByOrdinal(t *testing.T) {
	quiz := validQuiz()
	for i, j := 0, len(quiz.Questions)-1; i < j; i, j = i+1, j-1 {
		quiz.Questions[i], quiz.Questions[j] = quiz.Questions[j], quiz.Questions[i]
	}

	view := quiz.View()
	require.Len(t, view.Questions, 3)
	for i, question := range view.Questions {
		assert.Equal(t, i+1, question.Ordinal)
	}
}
