package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsBoundary plays the terminal game over a WebSocket: each text frame from
// the client is one input line, each Print is one text frame back.
type wsBoundary struct {
	conn    *websocket.Conn
	timeout time.Duration
}

func (b *wsBoundary) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b.timeout > 0 {
		_ = b.conn.SetReadDeadline(time.Now().Add(b.timeout))
	}
	for {
		kind, data, err := b.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind == websocket.TextMessage {
			return string(data), nil
		}
	}
}

func (b *wsBoundary) Print(text string) error {
	return b.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	c, err := s.newController()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied.
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	status, err := c.Run(r.Context(), &wsBoundary{conn: conn, timeout: s.ReadTimeout})
	var closed *websocket.CloseError
	if errors.As(err, &closed) {
		s.log.Info().Int("code", closed.Code).Stringer("status", status).Msg("websocket player left")
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Stringer("status", status).Msg("websocket game ended")
		return
	}
	s.log.Info().Stringer("status", status).Int("rounds", c.Rounds()).Msg("websocket game finished")
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, status.String()))
}
