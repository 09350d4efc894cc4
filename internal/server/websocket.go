package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/notifier"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = pongWait * 9 / 10
	// maxMessageSize bounds messages read from the peer, which are ignored anyway.
	maxMessageSize = 512
)

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			return origin == "" ||
				allowAnyOrigin(s.cfg.CORSAllowedOrigins) ||
				lo.Contains(s.cfg.CORSAllowedOrigins, origin)
		},
	}
}

// streamEvents upgrades the connection and forwards every job event as JSON.
// Active jobs are sent first so that a new listener starts from the current state.
func (s *Server) streamEvents(c *gin.Context) {
	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already replied to the client.
		logger.Debugf(c.Request.Context(), "WebSocket upgrade failed: %v", err)

		return
	}

	ctx := logger.WithKV(context.WithoutCancel(c.Request.Context()), "remote", c.ClientIP())
	sub := s.hub.Subscribe(notifier.DefaultBuffer)

	defer s.hub.Unsubscribe(sub)
	defer conn.Close() //nolint:errcheck // Closing a finished connection.

	logger.Debug(ctx, "WebSocket listener connected")

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	for _, job := range s.engine.Active().Jobs {
		event := notifier.Event{
			Type:      notifier.EventJobChanged,
			JobID:     job.ID,
			Job:       job,
			Timestamp: time.Now(),
		}

		if err = writeEvent(conn, event); err != nil {
			logger.Debugf(ctx, "WebSocket write failed: %v", err)

			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))

				return
			}

			if err = writeEvent(conn, event); err != nil {
				logger.Debugf(ctx, "WebSocket write failed: %v", err)

				return
			}
		case <-ticker.C:
			if err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			logger.Debug(ctx, "WebSocket listener disconnected")

			return
		}
	}
}

func writeEvent(conn *websocket.Conn, event notifier.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(event)
}

// readUntilClosed drains the peer so that pongs and close frames are processed.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
