package app

import (
	"context"

	"quiz-builder-service/internal/domain"
)

// QuizStore abstracts how the quiz collection is persisted (in-memory, Redis
// blob, Postgres rows). Implementations keep stored order stable: ListAll
// returns quizzes in insertion order and Upsert replaces records in place.
type QuizStore interface {
	// ListAll returns the full stored collection. An absent or unreadable
	// backing blob yields an empty slice, not an error.
	ListAll(ctx context.Context) ([]domain.Quiz, error)
	// GetByID returns the quiz with the given ID or domain.ErrQuizNotFound.
	GetByID(ctx context.Context, id int64) (domain.Quiz, error)
	// Upsert appends the quiz with a freshly minted ID when quiz.ID is zero,
	// otherwise replaces the stored record with the same ID. Replacing a
	// missing ID fails with domain.ErrQuizNotFound. Returns the stored quiz,
	// ID included.
	Upsert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	// DeleteByID removes the quiz if present; a missing ID is not an error.
	DeleteByID(ctx context.Context, id int64) error
}

// SessionRepository tracks live attempt sessions by token so transports can
// find them across messages (in-memory, optionally Redis-marked).
type SessionRepository interface {
	Put(token string, session *Session)
	Get(token string) (*Session, bool)
	Delete(token string)
}
