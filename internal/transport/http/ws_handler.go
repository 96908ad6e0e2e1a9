package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// WSHandler drives one quiz attempt per websocket connection: the client
// sees the quiz, confirms the start, captures answers while the server runs
// the countdown, and receives the scored result exactly once.
type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId,omitempty"`
	Value      string `json:"value,omitempty"`
}

type startedPayload struct {
	AttemptID        string `json:"attemptId"`
	Number           int    `json:"number"`
	RemainingSeconds int    `json:"remainingSeconds"`
}

type tickPayload struct {
	RemainingSeconds int `json:"remainingSeconds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and wires the connection into the attempt use
// cases. Query parameters bind the session to (course, quiz, user).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("courseId")
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if courseID == "" || quizID == "" || userID == "" {
		http.Error(w, "missing courseId, quizId, or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Fetching the definition is fatal on failure (including a course
	// mismatch): the session never starts and no attempt is created.
	quizView, err := h.service.GetQuiz(r.Context(), courseID, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
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

	send <- outboundMessage[any]{Type: "quiz", Payload: quizView}

	var (
		attemptID   string
		cancelWatch func()
		watchDone   chan struct{}
	)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "start":
			if attemptID != "" {
				send <- errMsg("attempt already started")
				continue
			}
			started, err := h.service.StartAttempt(r.Context(), courseID, quizID, userID)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			attemptID = started.Attempt.ID

			updates, cancel, err := h.service.Subscribe(r.Context(), attemptID)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			cancelWatch = cancel
			watchDone = make(chan struct{})
			go forwardEvents(updates, send, closeSignals, watchDone)

			send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
				AttemptID:        attemptID,
				Number:           started.Attempt.Number,
				RemainingSeconds: started.RemainingSeconds,
			}}

		case "answer":
			if attemptID == "" {
				send <- errMsg("attempt not started")
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			progress, err := h.service.SaveAnswer(r.Context(), attemptID, domain.CapturedResponse{
				QuestionID: payload.QuestionID,
				OptionID:   payload.OptionID,
				Value:      payload.Value,
			})
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "progress", Payload: progress}

		case "submit":
			if attemptID == "" {
				send <- errMsg("attempt not started")
				continue
			}
			if _, err := h.service.Submit(r.Context(), attemptID); err != nil {
				// A second trigger for the same attempt is suppressed, not an
				// error the client needs to see; the completed event already
				// went (or will go) out via the subscription.
				if errors.Is(err, domain.ErrSubmitInFlight) || errors.Is(err, domain.ErrAttemptCompleted) {
					continue
				}
				send <- errMsg(err.Error())
			}

		case "results":
			if attemptID == "" {
				send <- errMsg("attempt not started")
				continue
			}
			attempt, err := h.service.Results(r.Context(), attemptID)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: attempt}

		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	if cancelWatch != nil {
		cancelWatch()
		<-watchDone
	}
	if attemptID != "" {
		// No autosave: dropping the connection before submission abandons
		// the attempt and its captured responses.
		h.service.Abandon(r.Context(), attemptID)
	}
	close(send)
	<-writerDone
}

// forwardEvents translates session events into outbound frames.
func forwardEvents(updates <-chan app.Event, send chan<- outboundMessage[any], closeSignals <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				return
			}
			var msg outboundMessage[any]
			switch ev.Type {
			case app.EventTick:
				msg = outboundMessage[any]{Type: "tick", Payload: tickPayload{RemainingSeconds: ev.RemainingSeconds}}
			case app.EventCompleted:
				msg = outboundMessage[any]{Type: "completed", Payload: ev.Attempt}
			default:
				continue
			}
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
