package app

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memeclash/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// maxCodeAttempts bounds room code regeneration on collision
	maxCodeAttempts = 10

	// cleanupInterval is how often abandoned rooms are looked for
	cleanupInterval = 10 * time.Minute
)

// Translator turns error codes into player-facing messages
type Translator interface {
	Normalize(locale string) string
	Message(code domain.ErrorCode, locale string) string
}

// Options configures a GameHub
type Options struct {
	Room           domain.RoomSettings
	RoomCodeLength int
	ReconnectGrace time.Duration
	AbandonTimeout time.Duration
	Scheduler      Scheduler
}

// DefaultOptions returns the standard game options
func DefaultOptions() Options {
	return Options{
		Room:           domain.DefaultRoomSettings(),
		RoomCodeLength: DefaultRoomCodeLength,
		ReconnectGrace: 30 * time.Second,
		AbandonTimeout: 2 * time.Hour,
		Scheduler:      SystemScheduler,
	}
}

// GameHub owns every live room, the identity registry and the connection
// gateway. It is constructed once at startup and torn down with Close.
type GameHub struct {
	sessions   map[string]*GameSession
	mu         sync.RWMutex
	registry   *Registry
	gateway    *Gateway
	supervisor *Supervisor
	content    domain.ContentSource
	translator Translator
	opts       Options
	logger     *zap.Logger
	newID      func() string
	done       chan struct{}
	closeOnce  sync.Once
}

// NewGameHub creates a new game hub and starts its cleanup loop
func NewGameHub(opts Options, content domain.ContentSource, translator Translator, logger *zap.Logger) *GameHub {
	if opts.RoomCodeLength <= 0 {
		opts.RoomCodeLength = DefaultRoomCodeLength
	}

	hub := &GameHub{
		sessions:   make(map[string]*GameSession),
		registry:   NewRegistry(),
		gateway:    NewGateway(logger),
		supervisor: NewSupervisor(opts.Scheduler, opts.ReconnectGrace),
		content:    content,
		translator: translator,
		opts:       opts,
		logger:     logger,
		newID:      uuid.NewString,
		done:       make(chan struct{}),
	}

	go hub.cleanupLoop()

	return hub
}

// Connect registers a live connection so events can reach it
func (h *GameHub) Connect(conn ClientConnection) {
	h.gateway.Register(conn)
}

// GetSession returns a game session by room code (case-insensitive)
func (h *GameHub) GetSession(roomCode string) (*GameSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[domain.NormalizeRoomCode(roomCode)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// RoomInfo answers the read-only pre-join query
func (h *GameHub) RoomInfo(roomCode string) domain.RoomInfo {
	session, err := h.GetSession(roomCode)
	if err != nil {
		return domain.RoomInfo{}
	}
	return session.Info()
}

// GetSessionCount returns the number of active sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalPlayerCount returns the total number of players across all sessions
func (h *GameHub) GetTotalPlayerCount() int {
	total := 0
	for _, session := range h.snapshotSessions() {
		total += session.GetPlayerCount()
	}
	return total
}

// GetConnectionCount returns the number of live connections
func (h *GameHub) GetConnectionCount() int {
	return h.gateway.Count()
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.supervisor.Stop()

		h.mu.Lock()
		sessions := h.sessions
		h.sessions = make(map[string]*GameSession)
		h.mu.Unlock()

		for _, session := range sessions {
			session.Close()
		}
		h.gateway.CloseAll()
	})
}

// createSession inserts a fresh room under a unique code and seats its creator
// before the code becomes visible to anyone else. The session lock taken by
// Join is uncontended here: the session is not in the map yet.
func (h *GameHub) createSession(handle, nickname, locale string) (*GameSession, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var roomCode string
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		roomCode = h.generateRoomCode()
		if _, exists := h.sessions[roomCode]; !exists {
			break
		}
	}

	if _, exists := h.sessions[roomCode]; exists {
		return nil, "", fmt.Errorf("failed to generate unique room code")
	}

	room := domain.NewRoom(roomCode, h.opts.Room, h.content)
	session := NewGameSession(room, h.gateway, h.registry, h.supervisor, h.logger)
	session.onEmpty = h.removeSession

	playerID := h.newID()
	if _, err := session.Join(handle, playerID, nickname, locale, true); err != nil {
		return nil, "", err
	}
	h.sessions[roomCode] = session

	h.logger.Info("room created", zap.String("roomCode", roomCode), zap.String("hostID", playerID))

	return session, playerID, nil
}

// removeSession deletes a session if it is still the one stored under its code
func (h *GameHub) removeSession(session *GameSession) {
	h.mu.Lock()
	defer h.mu.Unlock()

	code := session.GetRoomCode()
	if current, ok := h.sessions[code]; ok && current == session {
		delete(h.sessions, code)
		h.logger.Info("room deleted", zap.String("roomCode", code))
	}
}

func (h *GameHub) snapshotSessions() []*GameSession {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sessions := make([]*GameSession, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// generateRoomCode generates a random room code
func (h *GameHub) generateRoomCode() string {
	b := make([]byte, h.opts.RoomCodeLength)
	_, _ = rand.Read(b)

	code := make([]byte, h.opts.RoomCodeLength)
	for i := range code {
		code[i] = domain.RoomCodeChars[int(b[i])%len(domain.RoomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically clears rooms nobody is connected to anymore
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupAbandoned(time.Now())
		}
	}
}

// cleanupAbandoned empties and deletes rooms whose players have all been
// disconnected for longer than the abandon timeout
func (h *GameHub) cleanupAbandoned(now time.Time) int {
	removed := 0
	for _, session := range h.snapshotSessions() {
		if session.abandon(now, h.opts.AbandonTimeout) {
			h.removeSession(session)
			h.logger.Info("abandoned room cleaned up",
				zap.String("roomCode", session.GetRoomCode()),
				zap.String("phase", session.GetPhase().String()),
				zap.Duration("age", now.Sub(session.GetCreatedAt())),
			)
			removed++
		}
	}
	return removed
}
