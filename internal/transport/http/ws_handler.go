package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"test-grading-service/internal/app"
	"test-grading-service/internal/domain"
	"test-grading-service/internal/timer"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
	// tickInterval is the exam countdown cadence; tests shrink it to
	// reach expiry quickly.
	tickInterval time.Duration
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tickInterval: time.Second,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type questionPayload struct {
	QuestionID string `json:"questionId"`
}

type answerPayload struct {
	QuestionID        string   `json:"questionId"`
	SelectedOptionIDs []string `json:"selectedOptionIds"`
	TextAnswer        string   `json:"textAnswer,omitempty"`
}

type startedPayload struct {
	Test domain.RedactedTest `json:"test"`
	Mode domain.Mode         `json:"mode"`
}

type savedPayload struct {
	QuestionID string `json:"questionId"`
}

type markedPayload struct {
	QuestionID string `json:"questionId"`
	Marked     bool   `json:"marked"`
}

type hintPayload struct {
	QuestionID string `json:"questionId"`
	Hint       string `json:"hint"`
}

type resultPayload struct {
	Result domain.Result `json:"result"`
	Saved  bool          `json:"saved"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one attempt
// over the connection: the attempt starts on connect and ends when the
// client finishes, the exam timer expires, or the socket drops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	testID := r.URL.Query().Get("testId")
	userID := r.URL.Query().Get("userId")
	userName := r.URL.Query().Get("name")
	mode := domain.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.ModeExam
	}
	if testID == "" || userID == "" || userName == "" {
		http.Error(w, "missing testId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	attempt, err := h.service.Start(r.Context(), testID, userID, mode)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	expiryDone := make(chan struct{})

	// Single writer goroutine: the expiry pump and the read loop both
	// produce messages, and the connection allows one concurrent writer.
	// After a write error it keeps draining send until close, so
	// producers never block on a half-dead connection.
	go func() {
		defer close(writerDone)
		var writeErr error
		for msg := range send {
			if writeErr != nil {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				writeErr = err
			}
		}
	}()

	// The handler owns the attempt's exam countdown; the attempt itself
	// stays a synchronous state container. Expiry finishes the attempt
	// server-side, pushes the result and drops the connection.
	var countdown *timer.Countdown
	test := attempt.Test()
	if mode == domain.ModeExam && test.TimeLimitMinutes > 0 {
		expired := make(chan struct{}, 1)
		countdown = timer.NewWithInterval(test.TimeLimitMinutes*60, h.tickInterval, func() {
			expired <- struct{}{}
		})
		go func() {
			defer close(expiryDone)
			select {
			case <-expired:
			case <-closeSignals:
				return
			}
			result, err := h.service.Finish(r.Context(), testID, userID, userName)
			if err != nil && !errors.Is(err, domain.ErrResultNotPersisted) {
				return
			}
			select {
			case send <- outboundMessage[any]{Type: "expired", Payload: resultPayload{Result: result, Saved: err == nil}}:
			case <-closeSignals:
			}
			_ = conn.Close()
		}()
		countdown.Start()
		defer countdown.Stop()
	} else {
		close(expiryDone)
	}

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{Test: test.Redact(), Mode: mode}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "navigate":
			var payload questionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid navigate payload")
				continue
			}
			if err := attempt.RecordTime(payload.QuestionID); err != nil {
				send <- errorMessage(err.Error())
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			if err := h.service.SaveAnswer(testID, userID, payload.QuestionID, payload.SelectedOptionIDs, payload.TextAnswer); err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "saved", Payload: savedPayload{QuestionID: payload.QuestionID}}
		case "mark":
			var payload questionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid mark payload")
				continue
			}
			marked, err := h.service.ToggleMark(testID, userID, payload.QuestionID)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "marked", Payload: markedPayload{QuestionID: payload.QuestionID, Marked: marked}}
		case "check":
			var payload questionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid check payload")
				continue
			}
			check, err := h.service.CheckAnswer(testID, userID, payload.QuestionID)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			if check == nil {
				send <- errorMessage("feedback is not available in exam mode")
				continue
			}
			send <- outboundMessage[any]{Type: "checkResult", Payload: *check}
		case "hint":
			var payload questionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid hint payload")
				continue
			}
			hint, err := h.service.Hint(testID, userID, payload.QuestionID)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			if hint == "" && mode == domain.ModeExam {
				send <- errorMessage("hints are not available in exam mode")
				continue
			}
			send <- outboundMessage[any]{Type: "hint", Payload: hintPayload{QuestionID: payload.QuestionID, Hint: hint}}
		case "finish":
			if countdown != nil {
				countdown.Stop()
			}
			result, err := h.service.Finish(r.Context(), testID, userID, userName)
			switch {
			case err == nil:
				send <- outboundMessage[any]{Type: "result", Payload: resultPayload{Result: result, Saved: true}}
			case errors.Is(err, domain.ErrResultNotPersisted):
				// The user still gets their locally-computed result; the
				// client may resubmit later.
				send <- outboundMessage[any]{Type: "result", Payload: resultPayload{Result: result, Saved: false}}
			default:
				send <- errorMessage(err.Error())
			}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-expiryDone
	close(send)
	<-writerDone

	// Connection dropped before finish: the attempt is abandoned and
	// simply discarded, nothing was persisted.
	if _, err := h.service.Attempt(testID, userID); err == nil {
		h.service.Discard(testID, userID)
	}
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
