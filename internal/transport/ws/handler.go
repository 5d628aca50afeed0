package ws

import (
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"memeclash/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.GameHub
	upgrader websocket.Upgrader
	opts     Options
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins
// accepts any origin.
func NewHandler(hub *app.GameHub, opts Options, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		opts:   opts,
		logger: logger,
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
// The connection gets a fresh handle; it joins a room through its messages.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	handle := uuid.NewString()
	client := NewClient(conn, h.hub, handle, h.opts, h.logger)
	h.hub.Connect(client)

	h.logger.Debug("websocket connected", zap.String("handle", handle), zap.String("remote", r.RemoteAddr))

	client.Run()

	h.logger.Debug("websocket closed", zap.String("handle", handle))
}
