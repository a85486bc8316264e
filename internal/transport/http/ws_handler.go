package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vmm-exam-service/internal/app"
	"vmm-exam-service/internal/domain"
)

type WSHandler struct {
	exam     *app.ExamService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(exam *app.ExamService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		exam: exam,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Candidate domain.Candidate `json:"candidate"`
}

type answerPayload struct {
	QuestionID int    `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type submitPayload struct {
	Confirm bool `json:"confirm"`
}

type connectedPayload struct {
	ContextID string `json:"contextId"`
}

type startedPayload struct {
	Questions domain.QuestionBank `json:"questions"`
	Remaining int                 `json:"remaining"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type confirmPayload struct {
	Unanswered []int `json:"unanswered"`
}

type resultPayload struct {
	Reason string        `json:"reason"`
	Result domain.Result `json:"result"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// outbox is the send side of one connection. Session hooks fire from the
// countdown goroutine, so sends after close are dropped instead of panicking.
type outbox struct {
	mu     sync.Mutex
	ch     chan outboundMessage[any]
	closed bool
	log    zerolog.Logger
}

func newOutbox(size int, log zerolog.Logger) *outbox {
	return &outbox{ch: make(chan outboundMessage[any], size), log: log}
}

func (o *outbox) send(typ string, payload any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.ch <- outboundMessage[any]{Type: typ, Payload: payload}:
	default:
		o.log.Warn().Str("type", typ).Msg("ws outbox full, dropping message")
	}
}

func (o *outbox) sendError(err error) {
	payload := errorPayload{Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		payload.Fields = verr.Fields
	}
	o.send("error", payload)
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}

// ServeWS upgrades HTTP requests to websockets and drives one exam session over them.
// The browsing context comes from the contextId query parameter or is minted here.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	contextID := r.URL.Query().Get("contextId")
	if contextID == "" {
		contextID = r.Header.Get(ContextHeader)
	}
	if contextID == "" {
		contextID = uuid.New().String()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("context_id", contextID).Logger()
	out := newOutbox(64, log)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range out.ch {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	hooks := app.SessionHooks{
		OnTick: func(remaining int) {
			out.send("tick", tickPayload{Remaining: remaining})
		},
		OnSubmit: func(result domain.Result, reason app.SubmitReason) {
			out.send("result", resultPayload{Reason: reason.String(), Result: result})
		},
	}

	out.send("connected", connectedPayload{ContextID: contextID})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				out.send("error", errorPayload{Message: "invalid start payload"})
				continue
			}
			session, err := h.exam.Begin(r.Context(), contextID, payload.Candidate, hooks)
			if err != nil {
				out.sendError(err)
				continue
			}
			out.send("started", startedPayload{Questions: session.Bank().Public(), Remaining: session.Remaining()})
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				out.send("error", errorPayload{Message: "invalid answer payload"})
				continue
			}
			if err := h.exam.Answer(r.Context(), contextID, payload.QuestionID, payload.OptionID); err != nil {
				out.sendError(err)
				continue
			}
			out.send("answered", payload)
		case "submit":
			var payload submitPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					out.send("error", errorPayload{Message: "invalid submit payload"})
					continue
				}
			}
			// a successful submit is reported by the OnSubmit hook
			_, err := h.exam.Submit(r.Context(), contextID, payload.Confirm)
			var incomplete *domain.IncompleteSubmissionError
			switch {
			case errors.As(err, &incomplete):
				out.send("confirm", confirmPayload{Unanswered: incomplete.Unanswered})
			case err != nil:
				out.sendError(err)
			}
		default:
			out.send("error", errorPayload{Message: "unsupported message type"})
		}
	}

	h.exam.Abandon(r.Context(), contextID)
	out.close()
	<-writerDone
}
