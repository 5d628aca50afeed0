package app

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memeclash/internal/content"
	"memeclash/internal/domain"
	"memeclash/internal/i18n"
)

// recordingConn is a ClientConnection that keeps everything sent to it
type recordingConn struct {
	handle string
	mu     sync.Mutex
	events []*domain.GameEvent
	closed bool
}

func newConn(handle string) *recordingConn {
	return &recordingConn{handle: handle}
}

func (c *recordingConn) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev, ok := message.(*domain.GameEvent); ok {
		c.events = append(c.events, ev)
	}
	return nil
}

func (c *recordingConn) GetHandle() string { return c.handle }

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// drain returns and forgets everything received so far
func (c *recordingConn) drain() []*domain.GameEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.events
	c.events = nil
	return out
}

func (c *recordingConn) types() []domain.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.EventType, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

// last returns the most recent event of the given type
func (c *recordingConn) last(t *testing.T, eventType domain.EventType) *domain.GameEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Type == eventType {
			return c.events[i]
		}
	}
	require.FailNowf(t, "event not received", "no %s event for %s", eventType, c.handle)
	return nil
}

func (c *recordingConn) count(eventType domain.EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

// manualScheduler only runs callbacks when the test fires them
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	d       time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f, d: d}
	s.timers = append(s.timers, t)
	return t
}

// fireAll runs every timer that has not fired yet, including stopped ones,
// the way a timer that already started running would race a Stop.
func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	pending := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.fired {
			t.fired = true
			pending = append(pending, t)
		}
	}
	s.mu.Unlock()

	for _, t := range pending {
		t.f()
	}
}

// fireActive runs only timers that were not stopped
func (s *manualScheduler) fireActive() {
	s.mu.Lock()
	pending := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			t.fired = true
			pending = append(pending, t)
		}
	}
	s.mu.Unlock()

	for _, t := range pending {
		t.f()
	}
}

func testMemes(n int) []domain.MemeCard {
	memes := make([]domain.MemeCard, 0, n)
	for i := 1; i <= n; i++ {
		memes = append(memes, domain.MemeCard{ID: fmt.Sprintf("m%03d", i), ImageURL: fmt.Sprintf("https://img.test/%d.jpg", i)})
	}
	return memes
}

func testPhrases(locale string, n int) []domain.Phrase {
	phrases := make([]domain.Phrase, 0, n)
	for i := 1; i <= n; i++ {
		phrases = append(phrases, domain.Phrase{ID: fmt.Sprintf("%s-%03d", locale, i), Text: fmt.Sprintf("%s %d", locale, i)})
	}
	return phrases
}

type testHub struct {
	*GameHub
	sched *manualScheduler
}

func newTestHub(t *testing.T) *testHub {
	t.Helper()
	return newTestHubWithFallback(t, "en")
}

// newTestHubWithFallback builds a hub whose translator falls back to locale
func newTestHubWithFallback(t *testing.T, locale string) *testHub {
	t.Helper()

	pool := content.NewPool(testMemes(300), map[string][]domain.Phrase{
		"en": testPhrases("en", 30),
		"pl": testPhrases("pl", 30),
	}, "en")
	translator, err := i18n.Load(locale)
	require.NoError(t, err)

	sched := &manualScheduler{}
	opts := DefaultOptions()
	opts.Scheduler = sched

	hub := NewGameHub(opts, pool, translator, zap.NewNop())
	t.Cleanup(hub.Close)

	return &testHub{GameHub: hub, sched: sched}
}

// connect registers a recording connection under handle
func (h *testHub) connect(handle string) *recordingConn {
	conn := newConn(handle)
	h.Connect(conn)
	return conn
}

// createRoom has conn create a room and returns its code and player ID
func (h *testHub) createRoom(t *testing.T, conn *recordingConn, nickname string) (string, string) {
	t.Helper()
	h.CreateRoom(conn.handle, nickname, "")
	payload := conn.last(t, domain.EventRoomCreated).Payload.(*domain.RoomCreatedPayload)
	return payload.RoomCode, payload.PlayerID
}

// joinRoom has conn join code and returns its player ID
func (h *testHub) joinRoom(t *testing.T, conn *recordingConn, code, nickname string) string {
	t.Helper()
	h.JoinRoom(conn.handle, code, nickname, "")
	return conn.last(t, domain.EventRoomJoined).Payload.(*domain.RoomJoinedPayload).PlayerID
}

func lastState(t *testing.T, conn *recordingConn) *domain.RoomState {
	t.Helper()
	return conn.last(t, domain.EventRoomState).Payload.(*domain.RoomStatePayload).State
}

func lastHand(t *testing.T, conn *recordingConn) []domain.MemeCard {
	t.Helper()
	return conn.last(t, domain.EventHandDealt).Payload.(*domain.HandDealtPayload).Hand
}

func lastErrorCode(t *testing.T, conn *recordingConn) domain.ErrorCode {
	t.Helper()
	return conn.last(t, domain.EventError).Payload.(*domain.ErrorPayload).Code
}
