package app

import (
	"sync"
	"time"

	"quiz-builder-service/internal/domain"
)

// Session runs one attempt at a quiz: question navigation, per-question answer
// selection, a per-second countdown, scoring, and the post-submission review.
// It never writes to the quiz store. The transport owns the real clock and
// drives the countdown through Tick so tests can tick deterministically.
type Session struct {
	token     string
	quiz      domain.Quiz
	startedAt time.Time

	mu         sync.Mutex
	current    int
	selections [][]int // one selection set per question
	timeLeft   int     // seconds
	submitted  bool
	reviewing  bool
	score      int
}

// NewSession starts an attempt at the given quiz with the countdown primed to
// the quiz timer in seconds.
func NewSession(token string, quiz domain.Quiz) *Session {
	return newSessionWithClock(token, quiz, time.Now)
}

// newSessionWithClock allows deterministic start timestamps in tests.
func newSessionWithClock(token string, quiz domain.Quiz, now func() time.Time) *Session {
	return &Session{
		token:      token,
		quiz:       quiz.Clone(),
		startedAt:  now(),
		selections: make([][]int, len(quiz.Questions)),
		timeLeft:   quiz.Timer * 60,
	}
}

// Token returns the attempt token the session is registered under.
func (s *Session) Token() string {
	return s.token
}

// Quiz returns the quiz the attempt runs against.
func (s *Session) Quiz() domain.Quiz {
	return s.quiz
}

// Progress reports the current question index, the question count, and the
// seconds remaining.
func (s *Session) Progress() (current, total, timeLeft int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, len(s.quiz.Questions), s.timeLeft
}

// CurrentQuestion returns the question being shown and the respondent's
// selection set for it.
func (s *Session) CurrentQuestion() (index int, question domain.Question, selected []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.quiz.Questions) == 0 {
		return 0, domain.Question{}, nil
	}
	return s.current, s.quiz.Questions[s.current], append([]int(nil), s.selections[s.current]...)
}

// Next advances to the following question; a no-op on the last one.
// Navigation never alters recorded selections.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.quiz.Questions)-1 {
		s.current++
	}
	return s.current
}

// Prev retreats to the preceding question; a no-op on the first one.
func (s *Session) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
	return s.current
}

// Select records the respondent's choice for the current question, replacing
// any earlier choice with the singleton set. Selections after submission are
// rejected silently; the attempt is already scored.
func (s *Session) Select(answerIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.quiz.Questions) == 0 {
		return domain.ErrAnswerOutOfRange
	}
	if answerIndex < 0 || answerIndex >= len(s.quiz.Questions[s.current].Answers) {
		return domain.ErrAnswerOutOfRange
	}
	if s.submitted {
		return nil
	}
	s.selections[s.current] = []int{answerIndex}
	return nil
}

// Tick decrements the countdown by one second. When the countdown hits zero
// the attempt auto-submits; autoSubmitted is true only on the tick that
// caused it, so the forced submit fires exactly once. Ticks after submission
// or exhaustion are no-ops.
func (s *Session) Tick() (timeLeft int, autoSubmitted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted || s.timeLeft <= 0 {
		return s.timeLeft, false
	}
	s.timeLeft--
	if s.timeLeft == 0 {
		s.submitLocked()
		return 0, true
	}
	return s.timeLeft, false
}

// Submit scores the attempt. Idempotent: repeat calls return the first score.
func (s *Session) Submit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.submitted {
		s.submitLocked()
	}
	return s.score
}

// submitLocked applies the scoring rule: a question awards its points at most
// once, iff the respondent selected at least one option and every selected
// option is correct.
func (s *Session) submitLocked() {
	total := 0
	for i, question := range s.quiz.Questions {
		selected := s.selections[i]
		if len(selected) == 0 {
			continue
		}
		allCorrect := true
		for _, answerIndex := range selected {
			if !question.IsCorrect(answerIndex) {
				allCorrect = false
				break
			}
		}
		if allCorrect {
			total += question.PointValue()
		}
	}
	s.score = total
	s.submitted = true
}

// Submitted reports whether the attempt has been scored.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Score returns the attempt score; ok is false before submission.
func (s *Session) Score() (score int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.submitted
}

// Reviewing reports whether the attempt has entered the read-only review.
func (s *Session) Reviewing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewing
}

// Review classifies every answer option of every question for the submitted
// attempt: selected and correct, selected and wrong, or neutral when
// unselected regardless of correctness. The session stays in review until torn
// down; review is read-only.
func (s *Session) Review() ([]domain.QuestionReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.submitted {
		return nil, domain.ErrNotSubmitted
	}
	s.reviewing = true

	reviews := make([]domain.QuestionReview, len(s.quiz.Questions))
	for i, question := range s.quiz.Questions {
		marks := make([]domain.ReviewMark, len(question.Answers))
		for j := range question.Answers {
			marks[j] = classify(j, s.selections[i], question)
		}
		reviews[i] = domain.QuestionReview{
			Question: question.Question,
			Answers:  append([]string(nil), question.Answers...),
			Marks:    marks,
			Selected: append([]int(nil), s.selections[i]...),
			Correct:  append([]int(nil), question.CorrectAnswers...),
		}
	}
	return reviews, nil
}

func classify(answerIndex int, selected []int, question domain.Question) domain.ReviewMark {
	chosen := false
	for _, idx := range selected {
		if idx == answerIndex {
			chosen = true
			break
		}
	}
	if !chosen {
		return domain.MarkNeutral
	}
	if question.IsCorrect(answerIndex) {
		return domain.MarkCorrect
	}
	return domain.MarkWrong
}
