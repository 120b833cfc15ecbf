package app

import (
	"context"
	"strings"

	"quiz-builder-service/internal/domain"
)

// Catalog serves the quiz list: refresh, name search, and delete.
type Catalog struct {
	store QuizStore
}

func NewCatalog(store QuizStore) *Catalog {
	return &Catalog{store: store}
}

// List returns every stored quiz in stored order.
func (c *Catalog) List(ctx context.Context) ([]domain.Quiz, error) {
	return c.store.ListAll(ctx)
}

// Search filters the stored list by case-insensitive substring match against
// the quiz name. An empty term returns the full list. The stored collection
// and its order are never modified.
func (c *Catalog) Search(ctx context.Context, term string) ([]domain.Quiz, error) {
	quizzes, err := c.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return quizzes, nil
	}
	needle := strings.ToLower(term)
	matched := make([]domain.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if strings.Contains(strings.ToLower(quiz.Name), needle) {
			matched = append(matched, quiz)
		}
	}
	return matched, nil
}

// Remove deletes the quiz by ID. Missing IDs are tolerated.
func (c *Catalog) Remove(ctx context.Context, id int64) error {
	return c.store.DeleteByID(ctx, id)
}
