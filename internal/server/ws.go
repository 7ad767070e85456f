package server

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/websocket/v2"
)

// MessageType represents the different kinds of WebSocket messages.
type MessageType string

const (
	// Server to client.
	MessageTypeState    MessageType = "state"
	MessageTypeMove     MessageType = "move"
	MessageTypeGameOver MessageType = "game_over"
	MessageTypeError    MessageType = "error"
	// Client to server; "move" and "resign" are accepted inbound too.
	MessageTypeResign MessageType = "resign"
)

// Message is the envelope for every WebSocket frame.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MovePayload announces an applied move.
type MovePayload struct {
	Move  string `json:"move"`
	Color string `json:"color"`
}

// GameOverPayload announces the result once a game finishes.
type GameOverPayload struct {
	Outcome string `json:"outcome"`
	Method  string `json:"method"`
}

// ErrorPayload carries a request error back to one client.
type ErrorPayload struct {
	Error string `json:"error"`
}

// newMessage wraps a payload struct in a Message envelope. The payloads
// are our own types, so marshaling cannot fail.
func newMessage(t MessageType, payload any) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Message{Type: t, Payload: raw}
}

// handleWS serves one WebSocket subscriber for a game. The client gets
// the full state on connect and after every change; moves and
// resignations may be submitted over the same connection.
func (s *Server) handleWS(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("playerID").(string)

	log := s.log.With().Str("game", gameID).Str("player", playerID).Logger()

	mg, err := s.manager.get(gameID)
	if err != nil {
		_ = c.WriteJSON(newMessage(MessageTypeError, ErrorPayload{Error: err.Error()}))
		c.Close()
		return
	}

	// Broadcasts may write to this connection concurrently, so every
	// write after registration goes through the serialized wrapper.
	wc := mg.addConn(playerID, c)
	defer mg.removeConn(playerID, wc)
	log.Debug().Msg("websocket connected")

	// Initial snapshot.
	mg.mu.Lock()
	state := mg.stateLocked()
	mg.mu.Unlock()
	if err := wc.WriteJSON(newMessage(MessageTypeState, state)); err != nil {
		return
	}

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("websocket closed")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.WriteJSON(newMessage(MessageTypeError, ErrorPayload{Error: "malformed message"}))
			continue
		}

		if err := s.handleWSMessage(gameID, playerID, msg); err != nil {
			_ = wc.WriteJSON(newMessage(MessageTypeError, ErrorPayload{Error: err.Error()}))
		}
	}
}

// handleWSMessage dispatches one inbound frame. State changes reach this
// client through the game broadcast, not as a direct reply.
func (s *Server) handleWSMessage(gameID, playerID string, msg Message) error {
	switch msg.Type {
	case MessageTypeMove:
		var req MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errors.New("malformed move payload")
		}
		_, _, err := s.manager.Move(gameID, playerID, req.Move)
		return err

	case MessageTypeResign:
		var req ResignRequest
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return errors.New("malformed resign payload")
			}
		}
		_, err := s.manager.Resign(gameID, playerID, req.Color)
		return err

	default:
		return errors.New("unknown message type: " + string(msg.Type))
	}
}
