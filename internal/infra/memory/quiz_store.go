package memory

import (
	"context"
	"sync"
	"time"

	"quiz-builder-service/internal/domain"
)

// QuizStore keeps the quiz collection in process memory. It mirrors the blob
// store semantics: one ordered collection, IDs minted from the clock on first
// save, replace-in-place on update. Default store when no backend is
// configured; also the workhorse for tests.
type QuizStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	quizzes []domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{clock: time.Now}
}

// NewQuizStoreWithClock is test-only for deterministic minted IDs.
func NewQuizStoreWithClock(clock func() time.Time) *QuizStore {
	return &QuizStore{clock: clock}
}

func (s *QuizStore) ListAll(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, len(s.quizzes))
	for i, quiz := range s.quizzes {
		out[i] = quiz.Clone()
	}
	return out, nil
}

func (s *QuizStore) GetByID(_ context.Context, id int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.ID == id {
			return quiz.Clone(), nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) Upsert(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := quiz.Clone()
	if stored.ID == 0 {
		stored.ID = domain.MintID(s.clock(), func(id int64) bool {
			for _, q := range s.quizzes {
				if q.ID == id {
					return true
				}
			}
			return false
		})
		s.quizzes = append(s.quizzes, stored)
		return stored.Clone(), nil
	}
	for i, q := range s.quizzes {
		if q.ID == stored.ID {
			s.quizzes[i] = stored
			return stored.Clone(), nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.quizzes {
		if q.ID == id {
			s.quizzes = append(s.quizzes[:i], s.quizzes[i+1:]...)
			return nil
		}
	}
	return nil
}
