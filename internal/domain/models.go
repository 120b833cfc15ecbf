package domain

import (
	"fmt"
	"strings"
	"time"
)

// Quiz is a named, timed collection of ordered questions. ID 0 means the quiz
// has not been saved yet; the store mints an ID on first upsert.
type Quiz struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Timer     int        `json:"timer"` // whole minutes
	Questions []Question `json:"questions"`
}

// Question models a multiple-choice prompt. CorrectAnswers holds indices into
// Answers; more than one entry means a multi-correct question.
type Question struct {
	Question       string   `json:"question"`
	Answers        []string `json:"answers"`
	CorrectAnswers []int    `json:"correctAnswers"`
	Points         int      `json:"points"` // treated as 1 when zero
}

// PointValue returns the points awarded for answering the question correctly,
// defaulting to 1 for records saved before points existed.
func (q Question) PointValue() int {
	if q.Points == 0 {
		return 1
	}
	return q.Points
}

// IsCorrect reports whether answerIndex is one of the question's correct options.
func (q Question) IsCorrect(answerIndex int) bool {
	for _, idx := range q.CorrectAnswers {
		if idx == answerIndex {
			return true
		}
	}
	return false
}

// Validate checks the quiz against the save-time rules: trimmed non-empty name,
// positive timer, and for every question a trimmed non-empty prompt, at least
// one trimmed non-empty answer, and positive points.
func (q Quiz) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidQuiz)
	}
	if q.Timer <= 0 {
		return fmt.Errorf("%w: timer must be a positive number of minutes", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if strings.TrimSpace(question.Question) == "" {
			return fmt.Errorf("%w: question %d has an empty prompt", ErrInvalidQuiz, i+1)
		}
		if len(question.Answers) == 0 {
			return fmt.Errorf("%w: question %d has no answers", ErrInvalidQuiz, i+1)
		}
		for j, answer := range question.Answers {
			if strings.TrimSpace(answer) == "" {
				return fmt.Errorf("%w: question %d answer %d is empty", ErrInvalidQuiz, i+1, j+1)
			}
		}
		if question.Points <= 0 {
			return fmt.Errorf("%w: question %d must award positive points", ErrInvalidQuiz, i+1)
		}
	}
	return nil
}

// Clone returns a deep copy so drafts can be mutated without aliasing stored state.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = cloneQuestions(q.Questions)
	return out
}

func cloneQuestions(questions []Question) []Question {
	if questions == nil {
		return nil
	}
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q
		out[i].Answers = append([]string(nil), q.Answers...)
		out[i].CorrectAnswers = append([]int(nil), q.CorrectAnswers...)
	}
	return out
}

// MintID derives a fresh quiz ID from the current time in milliseconds,
// bumping past any ID the taken predicate reports as already in use.
func MintID(now time.Time, taken func(int64) bool) int64 {
	id := now.UnixMilli()
	for taken(id) {
		id++
	}
	return id
}

// ReviewMark classifies one answer option in the post-submission review.
type ReviewMark int

const (
	// MarkNeutral covers every unselected option, correct or not.
	MarkNeutral ReviewMark = iota
	// MarkCorrect means the respondent selected the option and it is correct.
	MarkCorrect
	// MarkWrong means the respondent selected the option and it is not correct.
	MarkWrong
)

// QuestionReview pairs a question with the per-option marks for one attempt.
type QuestionReview struct {
	Question string       `json:"question"`
	Answers  []string     `json:"answers"`
	Marks    []ReviewMark `json:"marks"`
	Selected []int        `json:"selected"`
	Correct  []int        `json:"correct"`
}
