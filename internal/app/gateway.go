package app

import (
	"sync"

	"go.uber.org/zap"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	// Send queues a message without blocking. A full queue drops it.
	Send(message interface{}) error
	GetHandle() string
	Close() error
}

// Gateway delivers messages to live connections by handle
type Gateway struct {
	conns  map[string]ClientConnection
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewGateway creates an empty gateway
func NewGateway(logger *zap.Logger) *Gateway {
	return &Gateway{
		conns:  make(map[string]ClientConnection),
		logger: logger,
	}
}

// Register makes a connection reachable by its handle
func (g *Gateway) Register(conn ClientConnection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[conn.GetHandle()] = conn
}

// Unregister removes a connection
func (g *Gateway) Unregister(handle string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.conns, handle)
}

// SendTo delivers a message to one handle. Unknown handles are ignored.
func (g *Gateway) SendTo(handle string, message interface{}) {
	g.mu.RLock()
	conn, ok := g.conns[handle]
	g.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.Send(message); err != nil {
		g.logger.Warn("send failed", zap.String("handle", handle), zap.Error(err))
	}
}

// Count returns the number of live connections
func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// CloseAll closes every registered connection
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	conns := make([]ClientConnection, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.conns = make(map[string]ClientConnection)
	g.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
