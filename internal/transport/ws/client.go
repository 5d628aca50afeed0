package ws

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"memeclash/internal/app"
	"memeclash/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Longest nickname kept, in runes
	maxNicknameLength = 24
)

// Options tunes per-connection behavior
type Options struct {
	SendBuffer    int
	RatePerSecond float64
	RateBurst     int
}

// DefaultOptions returns the standard connection options
func DefaultOptions() Options {
	return Options{
		SendBuffer:    256,
		RatePerSecond: 10,
		RateBurst:     20,
	}
}

// Client represents a WebSocket client connection
type Client struct {
	conn    *websocket.Conn
	hub     *app.GameHub
	handle  string
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter
	logger  *zap.Logger
	mu      sync.Mutex
	closed  bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.GameHub, handle string, opts Options, logger *zap.Logger) *Client {
	return &Client{
		conn:    conn,
		hub:     hub,
		handle:  handle,
		send:    make(chan []byte, opts.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RateBurst),
		logger:  logger.With(zap.String("handle", handle)),
	}
}

// GetHandle returns the connection handle for this client
func (c *Client) GetHandle() string {
	return c.handle
}

// Send implements app.ClientConnection interface
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection. Actions are handled
// on this goroutine, so a connection's disconnect always follows its last action.
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c.handle)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}

		if !c.limiter.Allow() {
			c.logger.Debug("rate limited, message dropped")
			continue
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection.
// Each message gets its own frame so clients can parse frames independently.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches an incoming message. Malformed or unknown
// messages are dropped silently.
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debug("malformed message dropped", zap.Error(err))
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		var p CreateRoomPayload
		if decode(msg.Payload, &p) {
			if nickname, ok := cleanNickname(p.Nickname); ok {
				c.hub.CreateRoom(c.handle, nickname, p.Locale)
			}
		}
	case MsgJoinRoom:
		var p JoinRoomPayload
		if decode(msg.Payload, &p) && p.RoomCode != "" {
			if nickname, ok := cleanNickname(p.Nickname); ok {
				c.hub.JoinRoom(c.handle, p.RoomCode, nickname, p.Locale)
			}
		}
	case MsgReconnectRoom:
		var p ReconnectRoomPayload
		if decode(msg.Payload, &p) && p.PlayerID != "" && p.RoomCode != "" {
			c.hub.ReconnectRoom(c.handle, p.PlayerID, p.RoomCode, p.Locale)
		}
	case MsgChangeLocale:
		var p ChangeLocalePayload
		if decode(msg.Payload, &p) && p.Locale != "" {
			c.hub.ChangeLocale(c.handle, p.Locale)
		}
	case MsgStartGame:
		c.hub.StartGame(c.handle)
	case MsgSelectPhrase:
		var p SelectPhrasePayload
		if decode(msg.Payload, &p) && p.PhraseID != "" {
			c.hub.SelectPhrase(c.handle, p.PhraseID)
		}
	case MsgSubmitMeme:
		var p SubmitMemePayload
		if decode(msg.Payload, &p) && p.MemeID != "" {
			c.hub.SubmitMeme(c.handle, p.MemeID)
		}
	case MsgSelectWinner:
		var p SelectWinnerPayload
		if decode(msg.Payload, &p) {
			position, ok := domain.ParsePosition(p.PositionIndex)
			c.hub.SelectWinner(c.handle, position, ok)
		}
	case MsgNextRound:
		c.hub.NextRound(c.handle)
	case MsgPing:
		c.sendPong()
	default:
		c.logger.Debug("unknown message type dropped", zap.String("type", string(msg.Type)))
	}
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}

func decode(raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func cleanNickname(nickname string) (string, bool) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", false
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		nickname = string([]rune(nickname)[:maxNicknameLength])
	}
	return nickname, true
}
