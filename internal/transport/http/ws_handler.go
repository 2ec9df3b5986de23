package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"scramble-game-service/internal/app"
	"scramble-game-service/internal/domain"
)

type WSHandler struct {
	service  *app.RoundService
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoundService, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
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

type boardPayload struct {
	Mode       domain.Mode       `json:"mode"`
	Difficulty domain.Difficulty `json:"difficulty"`
	N          int               `json:"n,omitempty"`
}

type hintPayload struct {
	Level int `json:"level"`
}

type answerPayload struct {
	Text      string `json:"text"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type hintResult struct {
	Hint      domain.HintRecord `json:"hint"`
	HintsUsed int               `json:"hintsUsed"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// round use cases. Each connection serves one player.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent
	// writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Error().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, playerID, inbound, send)
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, playerID string, inbound inboundMessage, send chan<- outboundMessage[any]) {
	ctx := r.Context()
	switch inbound.Type {
	case "start":
		var payload boardPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid start payload")
			return
		}
		round, err := h.service.StartRound(ctx, playerID, payload.Mode, payload.Difficulty)
		if err != nil {
			send <- h.errorFor(err)
			return
		}
		send <- outboundMessage[any]{Type: "round", Payload: round}

	case "hint":
		var payload hintPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid hint payload")
			return
		}
		hint, used, err := h.service.UseHint(ctx, playerID, payload.Level)
		if err != nil {
			send <- h.errorFor(err)
			return
		}
		send <- outboundMessage[any]{Type: "hint", Payload: hintResult{Hint: hint, HintsUsed: used}}

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid answer payload")
			return
		}
		result, err := h.service.SubmitAnswer(ctx, playerID, payload.Text, time.Duration(payload.ElapsedMs)*time.Millisecond)
		if err != nil {
			send <- h.errorFor(err)
			return
		}
		send <- outboundMessage[any]{Type: "result", Payload: result}

	case "abandon":
		if err := h.service.AbandonRound(ctx, playerID); err != nil {
			send <- h.errorFor(err)
			return
		}
		send <- outboundMessage[any]{Type: "abandoned", Payload: struct{}{}}

	case "restart":
		var payload boardPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid restart payload")
			return
		}
		if err := h.service.RestartContent(ctx, playerID, payload.Mode, payload.Difficulty); err != nil {
			send <- h.errorFor(err)
			return
		}
		send <- outboundMessage[any]{Type: "restarted", Payload: payload}

	case "top":
		var payload boardPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid top payload")
			return
		}
		n := payload.N
		if n <= 0 {
			n = 10
		}
		entries, err := h.service.TopN(ctx, payload.Mode, payload.Difficulty, n)
		if err != nil {
			send <- h.errorFor(err)
			return
		}
		send <- outboundMessage[any]{Type: "leaderboard", Payload: entries}

	case "rank":
		var payload boardPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid rank payload")
			return
		}
		entry, err := h.service.PositionOf(ctx, playerID, payload.Mode, payload.Difficulty)
		if err != nil {
			send <- h.errorFor(err)
			return
		}
		send <- outboundMessage[any]{Type: "position", Payload: entry}

	default:
		send <- errorMessage("unsupported message type")
	}
}

// errorFor distinguishes the expected exhausted-pool outcome from real
// errors so clients can offer a restart action.
func (h *WSHandler) errorFor(err error) outboundMessage[any] {
	if errors.Is(err, domain.ErrContentExhausted) {
		return outboundMessage[any]{Type: "exhausted", Payload: errorPayload{Message: err.Error()}}
	}
	return errorMessage(err.Error())
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
