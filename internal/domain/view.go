package domain

import "sort"

// OptionView is an answer option as shown to a test-taker.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is a question as shown to a test-taker.
type QuestionView struct {
	ID      string       `json:"id"`
	Ordinal int          `json:"ordinal"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Points  int          `json:"points"`
	Options []OptionView `json:"options,omitempty"`
}

// QuizView is the test-taker's view of a quiz definition. Correctness flags
// and true/false answer literals are never exposed here; grading is
// authoritative and server-side.
type QuizView struct {
	ID               string         `json:"id"`
	CourseID         string         `json:"courseId"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	TimeLimitMinutes int            `json:"timeLimitMinutes"`
	PassPercent      int            `json:"passPercent"`
	MaxAttempts      int            `json:"maxAttempts"`
	Questions        []QuestionView `json:"questions"`
}

// View strips correctness data from the quiz for presentation. Questions come
// back in ordinal order regardless of how the definition stores them.
func (q Quiz) View() QuizView {
	questions := make([]QuestionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		qv := QuestionView{
			ID:      question.ID,
			Ordinal: question.Ordinal,
			Text:    question.Text,
			Type:    question.Type,
			Points:  question.Points,
		}
		for _, opt := range question.Options {
			qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
		questions = append(questions, qv)
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Ordinal < questions[j].Ordinal
	})
	return QuizView{
		ID:               q.ID,
		CourseID:         q.CourseID,
		Title:            q.Title,
		Description:      q.Description,
		TimeLimitMinutes: q.TimeLimitMinutes,
		PassPercent:      q.PassPercent,
		MaxAttempts:      q.MaxAttempts,
		Questions:        questions,
	}
}
