package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-builder-service/internal/app"
	"quiz-builder-service/internal/domain"
)

// QuizCache is a read-through TTL cache over a QuizStore. Attempt sessions
// read the same quiz on every reconnect, so GetByID hits are served from
// memory; writes pass through and invalidate. Concurrent misses for one quiz
// collapse into a single backing read.
type QuizCache struct {
	store app.QuizStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[int64]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(store app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[int64]cachedQuiz),
	}
}

func (c *QuizCache) GetByID(ctx context.Context, id int64) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz.Clone(), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(cacheKey(id), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.store.GetByID(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[id] = cachedQuiz{quiz: quiz, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz).Clone(), nil
}

// ListAll always reads through; the catalog view must reflect writes made via
// other instances immediately.
func (c *QuizCache) ListAll(ctx context.Context) ([]domain.Quiz, error) {
	return c.store.ListAll(ctx)
}

func (c *QuizCache) Upsert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	stored, err := c.store.Upsert(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.invalidate(stored.ID)
	return stored, nil
}

func (c *QuizCache) DeleteByID(ctx context.Context, id int64) error {
	if err := c.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.invalidate(id)
	return nil
}

func (c *QuizCache) invalidate(id int64) {
	c.mu.Lock()
	delete(c.cache, id)
	c.mu.Unlock()
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
