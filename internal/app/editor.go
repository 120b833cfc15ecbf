package app

import (
	"context"

	"quiz-builder-service/internal/domain"
)

// Draft is the in-memory quiz being edited. Update methods are pure: each
// returns a new Draft and never aliases slices with the receiver, so the
// only side-effecting boundary is Editor.Save.
type Draft struct {
	Quiz domain.Quiz
}

// NewDraft returns a blank unsaved quiz draft.
func NewDraft() Draft {
	return Draft{}
}

// SetName replaces the quiz display name.
func (d Draft) SetName(name string) Draft {
	d.Quiz = d.Quiz.Clone()
	d.Quiz.Name = name
	return d
}

// SetTimer replaces the quiz duration in whole minutes.
func (d Draft) SetTimer(minutes int) Draft {
	d.Quiz = d.Quiz.Clone()
	d.Quiz.Timer = minutes
	return d
}

// AddQuestion appends a question with one empty answer. The first answer is
// marked correct up front rather than leaving the correct set empty and the
// default implicit.
func (d Draft) AddQuestion() Draft {
	d.Quiz = d.Quiz.Clone()
	d.Quiz.Questions = append(d.Quiz.Questions, domain.Question{
		Answers:        []string{""},
		CorrectAnswers: []int{0},
		Points:         1,
	})
	return d
}

// DeleteQuestion removes the question at index; later questions shift down.
// An out-of-range index leaves the draft unchanged.
func (d Draft) DeleteQuestion(index int) Draft {
	if index < 0 || index >= len(d.Quiz.Questions) {
		return d
	}
	d.Quiz = d.Quiz.Clone()
	d.Quiz.Questions = append(d.Quiz.Questions[:index], d.Quiz.Questions[index+1:]...)
	return d
}

// SetPrompt replaces the prompt of the question at index.
func (d Draft) SetPrompt(index int, prompt string) Draft {
	if index < 0 || index >= len(d.Quiz.Questions) {
		return d
	}
	d.Quiz = d.Quiz.Clone()
	d.Quiz.Questions[index].Question = prompt
	return d
}

// SetPoints replaces the point value of the question at index.
func (d Draft) SetPoints(index, points int) Draft {
	if index < 0 || index >= len(d.Quiz.Questions) {
		return d
	}
	d.Quiz = d.Quiz.Clone()
	d.Quiz.Questions[index].Points = points
	return d
}

// SetAnswer replaces the answer text at answerIndex of the question at index.
func (d Draft) SetAnswer(index, answerIndex int, text string) Draft {
	if index < 0 || index >= len(d.Quiz.Questions) {
		return d
	}
	if answerIndex < 0 || answerIndex >= len(d.Quiz.Questions[index].Answers) {
		return d
	}
	d.Quiz = d.Quiz.Clone()
	d.Quiz.Questions[index].Answers[answerIndex] = text
	return d
}

// AddAnswer appends an empty answer option to the question at index.
func (d Draft) AddAnswer(index int) Draft {
	if index < 0 || index >= len(d.Quiz.Questions) {
		return d
	}
	d.Quiz = d.Quiz.Clone()
	q := &d.Quiz.Questions[index]
	q.Answers = append(q.Answers, "")
	return d
}

// RemoveAnswer drops the last answer option of the question at index and
// prunes any correct-answer index that no longer points at an option. The two
// edits happen as one step so the correct set can never reference a removed
// answer.
func (d Draft) RemoveAnswer(index int) Draft {
	if index < 0 || index >= len(d.Quiz.Questions) {
		return d
	}
	if len(d.Quiz.Questions[index].Answers) == 0 {
		return d
	}
	d.Quiz = d.Quiz.Clone()
	q := &d.Quiz.Questions[index]
	q.Answers = q.Answers[:len(q.Answers)-1]
	pruned := q.CorrectAnswers[:0]
	for _, idx := range q.CorrectAnswers {
		if idx < len(q.Answers) {
			pruned = append(pruned, idx)
		}
	}
	q.CorrectAnswers = pruned
	return d
}

// ToggleCorrect flips membership of answerIndex in the question's correct set:
// absent indices are added, present ones removed.
func (d Draft) ToggleCorrect(index, answerIndex int) Draft {
	if index < 0 || index >= len(d.Quiz.Questions) {
		return d
	}
	if answerIndex < 0 || answerIndex >= len(d.Quiz.Questions[index].Answers) {
		return d
	}
	d.Quiz = d.Quiz.Clone()
	q := &d.Quiz.Questions[index]
	for i, idx := range q.CorrectAnswers {
		if idx == answerIndex {
			q.CorrectAnswers = append(q.CorrectAnswers[:i], q.CorrectAnswers[i+1:]...)
			return d
		}
	}
	q.CorrectAnswers = append(q.CorrectAnswers, answerIndex)
	return d
}

// Validate runs the save-time rules against the draft.
func (d Draft) Validate() error {
	return d.Quiz.Validate()
}

// Editor owns the load/commit boundary between drafts and the store.
type Editor struct {
	store QuizStore
}

func NewEditor(store QuizStore) *Editor {
	return &Editor{store: store}
}

// Load returns a draft seeded from the stored quiz, or a blank draft when
// id is zero. A missing ID is surfaced as domain.ErrQuizNotFound rather than
// silently falling back to a blank draft.
func (e *Editor) Load(ctx context.Context, id int64) (Draft, error) {
	if id == 0 {
		return NewDraft(), nil
	}
	quiz, err := e.store.GetByID(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Quiz: quiz.Clone()}, nil
}

// Save validates the draft and commits it via Upsert, returning the stored
// quiz with its minted ID. Validation failure aborts the commit.
func (e *Editor) Save(ctx context.Context, draft Draft) (domain.Quiz, error) {
	if err := draft.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	return e.store.Upsert(ctx, draft.Quiz)
}
