package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-builder-service/internal/domain"
)

// QuizStore persists the whole quiz collection as one JSON array blob under a
// fixed key, the layout the browser build of this tool wrote to local storage:
// [{id,name,timer,questions:[{question,answers,correctAnswers,points}]}].
// Every mutation is a read-modify-write of the full blob; there is no
// isolation between writers, so this store assumes a single writer
// (last write wins otherwise).
type QuizStore struct {
	client *redis.Client
	key    string
	clock  func() time.Time
}

// DefaultKey matches the local-storage entry name used by the browser build.
const DefaultKey = "quizzes"

func NewQuizStore(client *redis.Client, key string) *QuizStore {
	if key == "" {
		key = DefaultKey
	}
	return &QuizStore{client: client, key: key, clock: time.Now}
}

// NewQuizStoreWithClock is test-only for deterministic minted IDs.
func NewQuizStoreWithClock(client *redis.Client, key string, clock func() time.Time) *QuizStore {
	store := NewQuizStore(client, key)
	store.clock = clock
	return store
}

func (s *QuizStore) ListAll(ctx context.Context) ([]domain.Quiz, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return []domain.Quiz{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read quiz blob: %w", err)
	}

	var quizzes []domain.Quiz
	if err := json.Unmarshal([]byte(raw), &quizzes); err != nil {
		// A corrupt blob is masked as an empty collection, matching the
		// original tool's behavior of treating unparsable state as absent.
		log.Printf("quiz blob under %q is not valid JSON, treating as empty: %v", s.key, err)
		return []domain.Quiz{}, nil
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	return quizzes, nil
}

func (s *QuizStore) GetByID(ctx context.Context, id int64) (domain.Quiz, error) {
	quizzes, err := s.ListAll(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, quiz := range quizzes {
		if quiz.ID == id {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) Upsert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	quizzes, err := s.ListAll(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}

	if quiz.ID == 0 {
		quiz.ID = domain.MintID(s.clock(), func(id int64) bool {
			for _, q := range quizzes {
				if q.ID == id {
					return true
				}
			}
			return false
		})
		quizzes = append(quizzes, quiz)
		return quiz, s.write(ctx, quizzes)
	}

	for i, q := range quizzes {
		if q.ID == quiz.ID {
			quizzes[i] = quiz
			return quiz, s.write(ctx, quizzes)
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) DeleteByID(ctx context.Context, id int64) error {
	quizzes, err := s.ListAll(ctx)
	if err != nil {
		return err
	}
	kept := quizzes[:0]
	for _, q := range quizzes {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(quizzes) {
		return nil
	}
	return s.write(ctx, kept)
}

func (s *QuizStore) write(ctx context.Context, quizzes []domain.Quiz) error {
	blob, err := json.Marshal(quizzes)
	if err != nil {
		return fmt.Errorf("encode quiz blob: %w", err)
	}
	if err := s.client.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("write quiz blob: %w", err)
	}
	return nil
}
