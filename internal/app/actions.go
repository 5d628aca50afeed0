package app

import (
	"errors"

	"go.uber.org/zap"

	"memeclash/internal/domain"
)

// The methods below are the inbound actions. Each names the connection
// handle it arrived on; rejections are reported to that handle only.

// CreateRoom opens a new room with the caller as host
func (h *GameHub) CreateRoom(handle, nickname, locale string) {
	prev, seated := h.registry.Lookup(handle)
	locale = h.translator.Normalize(locale)

	session, playerID, err := h.createSession(handle, nickname, locale)
	if err != nil {
		h.logger.Error("create room failed", zap.String("handle", handle), zap.Error(err))
		h.reject(handle, locale, err)
		return
	}
	h.leavePrevious(handle, prev, seated, session.key(playerID))
}

// JoinRoom seats the caller in an existing lobby. A rejected join leaves any
// seat the caller already holds untouched.
func (h *GameHub) JoinRoom(handle, roomCode, nickname, locale string) {
	prev, seated := h.registry.Lookup(handle)
	locale = h.translator.Normalize(locale)

	session, err := h.GetSession(roomCode)
	if err != nil {
		h.reject(handle, locale, err)
		return
	}

	playerID := h.newID()
	if _, err := session.Join(handle, playerID, nickname, locale, false); err != nil {
		h.reject(handle, locale, err)
		return
	}
	h.leavePrevious(handle, prev, seated, session.key(playerID))
}

// ReconnectRoom rebinds the caller to a seat it held before
func (h *GameHub) ReconnectRoom(handle, playerID, roomCode, locale string) {
	prev, seated := h.registry.Lookup(handle)
	if locale != "" {
		locale = h.translator.Normalize(locale)
	}

	session, err := h.GetSession(roomCode)
	if err != nil {
		h.reject(handle, h.errorLocale(nil, "", locale), err)
		return
	}

	if err := session.Reconnect(handle, playerID, locale); err != nil {
		h.reject(handle, h.errorLocale(nil, "", locale), err)
		return
	}
	h.leavePrevious(handle, prev, seated, session.key(playerID))
}

// ChangeLocale updates the caller's language
func (h *GameHub) ChangeLocale(handle, locale string) {
	h.withPlayer(handle, func(s *GameSession, playerID string) error {
		return s.ChangeLocale(playerID, h.translator.Normalize(locale))
	})
}

// StartGame starts the caller's room
func (h *GameHub) StartGame(handle string) {
	h.withPlayer(handle, func(s *GameSession, playerID string) error {
		return s.StartGame(playerID)
	})
}

// SelectPhrase picks the round's phrase
func (h *GameHub) SelectPhrase(handle, phraseID string) {
	h.withPlayer(handle, func(s *GameSession, playerID string) error {
		return s.SelectPhrase(playerID, phraseID)
	})
}

// SubmitMeme plays a card from the caller's hand
func (h *GameHub) SubmitMeme(handle, memeID string) {
	h.withPlayer(handle, func(s *GameSession, playerID string) error {
		return s.SubmitMeme(playerID, memeID)
	})
}

// SelectWinner picks the winning position. valid=false means the position
// could not be parsed, which is reported like an out-of-range index.
func (h *GameHub) SelectWinner(handle string, position int, valid bool) {
	if !valid {
		position = -1
	}
	h.withPlayer(handle, func(s *GameSession, playerID string) error {
		return s.SelectWinner(playerID, position)
	})
}

// NextRound starts the following round
func (h *GameHub) NextRound(handle string) {
	h.withPlayer(handle, func(s *GameSession, playerID string) error {
		return s.NextRound(playerID)
	})
}

// Disconnect is raised by the transport when a connection closes
func (h *GameHub) Disconnect(handle string) {
	h.release(handle)
	h.gateway.Unregister(handle)
}

// release drops the caller's current binding and treats it as a disconnect
func (h *GameHub) release(handle string) {
	b, ok := h.registry.Unbind(handle)
	if !ok {
		return
	}
	h.detach(b, handle)
}

// leavePrevious disconnects the seat handle held before it was bound to
// current. Only called once the new seat is secured.
func (h *GameHub) leavePrevious(handle string, prev Binding, seated bool, current Binding) {
	if !seated || prev == current {
		return
	}
	h.detach(prev, handle)
}

// detach marks the player behind b as disconnected from handle
func (h *GameHub) detach(b Binding, handle string) {
	session, err := h.GetSession(b.RoomCode)
	if err != nil {
		return
	}
	session.Disconnect(b.PlayerID, handle)
}

// withPlayer resolves handle to its seat and runs fn. Unbound handles are ignored.
func (h *GameHub) withPlayer(handle string, fn func(s *GameSession, playerID string) error) {
	b, ok := h.registry.Lookup(handle)
	if !ok {
		return
	}
	session, err := h.GetSession(b.RoomCode)
	if err != nil {
		return
	}

	if err := fn(session, b.PlayerID); err != nil {
		h.reject(handle, h.errorLocale(session, b.PlayerID, ""), err)
	}
}

// errorLocale picks the language for an error: the player's own, then the
// one supplied with the action, then the default.
func (h *GameHub) errorLocale(session *GameSession, playerID, supplied string) string {
	if session != nil {
		if locale := session.PlayerLocale(playerID); locale != "" {
			return locale
		}
	}
	return h.translator.Normalize(supplied)
}

// reject reports a typed error to the caller. Ignored actions stay silent.
func (h *GameHub) reject(handle, locale string, err error) {
	if errors.Is(err, domain.ErrIgnored) {
		h.logger.Debug("action ignored", zap.String("handle", handle))
		return
	}

	code, ok := domain.CodeOf(err)
	if !ok {
		return
	}

	h.gateway.SendTo(handle, domain.NewEvent(domain.EventError, "", &domain.ErrorPayload{
		Code:    code,
		Message: h.translator.Message(code, locale),
	}))
}
