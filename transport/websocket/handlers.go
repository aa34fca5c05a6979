package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

// handleWatch streams the state of the game named by the game_id query parameter.
func (that *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	log := that.logger.With("method", "handleWatch", "game_id", gameID)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the client never sends anything we need; reading only notices that it went away
	go func() {
		defer cancel()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	game, updates, err := that.games.Watch(ctx, gameID)
	if err != nil {
		code := apperror.CodeOf(err)
		if code == "" {
			code = "internal_error"
			log.Error("failed to watch game", "error", err)
		}

		if err = that.sendMessage(conn, actionError, Payload{Error: code}); err != nil {
			log.Debug("failed to send error", "error", err)
		}

		that.closeConnection(conn, websocket.ClosePolicyViolation, code)

		return
	}

	log.Info("watcher connected")

	if err = that.stream(conn, game, updates); err != nil {
		log.Debug("watcher disconnected", "error", err)

		return
	}

	if ctx.Err() == nil {
		that.closeConnection(conn, websocket.CloseNormalClosure, "game is done")
	}
}

// stream sends the current state and every update until the updates channel is closed.
func (that *Server) stream(conn *websocket.Conn, game *entity.Game, updates <-chan *entity.Game) error {
	if err := that.sendMessage(conn, actionGameState, Payload{Game: game}); err != nil {
		return err
	}

	for update := range updates {
		if err := that.sendMessage(conn, actionGameState, Payload{Game: update}); err != nil {
			return err
		}
	}

	return nil
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload Payload) error {
	message, err := newMessage(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err = conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) closeConnection(conn *websocket.Conn, code int, reason string) {
	frame := websocket.FormatCloseMessage(code, reason)

	err := conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(writeTimeout))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		that.logger.Debug("failed to send close frame", "error", err)
	}
}
