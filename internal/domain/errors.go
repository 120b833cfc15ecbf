package domain

import "errors"

var (
	// ErrQuizNotFound indicates the requested quiz is not in the store.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz wraps all quiz validation failures; the message names the failing field.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrAnswerOutOfRange indicates a selected answer index outside the question's options.
	ErrAnswerOutOfRange = errors.New("answer index out of range")
	// ErrNotSubmitted is returned when review is requested before the attempt is scored.
	ErrNotSubmitted = errors.New("attempt not submitted yet")
)
