package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"quiz-builder-service/internal/app"
	"quiz-builder-service/internal/domain"
)

// TakeHandler runs attempt sessions over a websocket. The server owns the
// state machine and the countdown; the client only sends navigation,
// selection, submit, and review commands and renders the frames pushed back.
type TakeHandler struct {
	store     app.QuizStore
	sessions  app.SessionRepository
	upgrader  websocket.Upgrader
	tickEvery time.Duration
}

func NewTakeHandler(store app.QuizStore, sessions app.SessionRepository) *TakeHandler {
	return &TakeHandler{
		store:    store,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tickEvery: time.Second,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Answer int `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
	TimeLeft int    `json:"timeLeft"`
}

type questionPayload struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
	Points   int      `json:"points"`
	Selected []int    `json:"selected"`
	TimeLeft int      `json:"timeLeft"`
}

type tickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

type scorePayload struct {
	Score int `json:"score"`
}

type reviewPayload struct {
	Score     int                     `json:"score"`
	Questions []domain.QuestionReview `json:"questions"`
}

// ServeTake upgrades the request and runs one attempt at the quiz named by
// the quizId query parameter. A missing quiz is rejected with 404 before the
// upgrade instead of leaving the client in a loading state.
func (h *TakeHandler) ServeTake(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(r.URL.Query().Get("quizId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid quizId", http.StatusBadRequest)
		return
	}

	quiz, err := h.store.GetByID(r.Context(), quizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("load quiz %d: %v", quizID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	token := strconv.FormatInt(time.Now().UnixNano(), 36)
	session := app.NewSession(token, quiz)
	h.sessions.Put(token, session)
	defer h.sessions.Delete(token)

	send := make(chan outboundMessage[any], 16)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	tickerDone := make(chan struct{})
	go h.runCountdown(ctx, session, send, tickerDone)

	_, total, timeLeft := session.Progress()
	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
		Token:    token,
		Name:     quiz.Name,
		Total:    total,
		TimeLeft: timeLeft,
	}}
	send <- h.questionFrame(session)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "next":
			session.Next()
			send <- h.questionFrame(session)
		case "prev":
			session.Prev()
			send <- h.questionFrame(session)
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorFrame("invalid select payload")
				continue
			}
			if err := session.Select(payload.Answer); err != nil {
				send <- errorFrame(err.Error())
				continue
			}
			send <- h.questionFrame(session)
		case "submit":
			score := session.Submit()
			send <- outboundMessage[any]{Type: "score", Payload: scorePayload{Score: score}}
		case "review":
			reviews, err := session.Review()
			if err != nil {
				send <- errorFrame(err.Error())
				continue
			}
			score, _ := session.Score()
			send <- outboundMessage[any]{Type: "review", Payload: reviewPayload{Score: score, Questions: reviews}}
		default:
			send <- errorFrame("unsupported message type")
		}
	}

	// Cancel the countdown before closing send: a tick landing after teardown
	// would write to a closed channel.
	cancel()
	<-tickerDone
	close(send)
	<-writerDone
}

// runCountdown drives the session clock: one decrement per tick until the
// session submits (by hand or by exhaustion) or the connection goes away.
func (h *TakeHandler) runCountdown(ctx context.Context, session *app.Session, send chan<- outboundMessage[any], done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			timeLeft, autoSubmitted := session.Tick()
			if autoSubmitted {
				score, _ := session.Score()
				select {
				case send <- outboundMessage[any]{Type: "tick", Payload: tickPayload{TimeLeft: 0}}:
				case <-ctx.Done():
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "score", Payload: scorePayload{Score: score}}:
				case <-ctx.Done():
				}
				return
			}
			if session.Submitted() {
				return
			}
			select {
			case send <- outboundMessage[any]{Type: "tick", Payload: tickPayload{TimeLeft: timeLeft}}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *TakeHandler) questionFrame(session *app.Session) outboundMessage[any] {
	index, question, selected := session.CurrentQuestion()
	_, total, timeLeft := session.Progress()
	return outboundMessage[any]{Type: "question", Payload: questionPayload{
		Index:    index,
		Total:    total,
		Question: question.Question,
		Answers:  question.Answers,
		Points:   question.PointValue(),
		Selected: selected,
		TimeLeft: timeLeft,
	}}
}

func errorFrame(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
