package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"memeclash/internal/domain"
)

// GameSession wraps a room with concurrency control and event delivery.
// Every action holds mu for its whole read-modify-publish cycle.
type GameSession struct {
	room       *domain.Room
	mu         sync.Mutex
	gateway    *Gateway
	registry   *Registry
	supervisor *Supervisor
	logger     *zap.Logger

	closed    bool
	idleSince time.Time // zero while someone is connected

	// onEmpty runs after the last player is removed, outside mu
	onEmpty func(*GameSession)
}

// NewGameSession creates a new game session
func NewGameSession(room *domain.Room, gateway *Gateway, registry *Registry, supervisor *Supervisor, logger *zap.Logger) *GameSession {
	return &GameSession{
		room:       room,
		gateway:    gateway,
		registry:   registry,
		supervisor: supervisor,
		logger:     logger.With(zap.String("roomCode", room.Code)),
	}
}

// GetRoomCode returns the room code
func (s *GameSession) GetRoomCode() string {
	return s.room.Code
}

// GetCreatedAt returns when the room was created
func (s *GameSession) GetCreatedAt() time.Time {
	return s.room.CreatedAt
}

// GetPlayerCount returns the number of players
func (s *GameSession) GetPlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.PlayerCount()
}

// GetPhase returns the current phase
func (s *GameSession) GetPhase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Phase
}

// Info returns the pre-join summary of the room
func (s *GameSession) Info() domain.RoomInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.RoomInfo{}
	}
	return s.room.Info()
}

// Snapshot returns the current public room state
func (s *GameSession) Snapshot() *domain.RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Snapshot()
}

// PlayerLocale returns a player's locale, or "" if unknown
func (s *GameSession) PlayerLocale(playerID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.room.Players[playerID]; ok {
		return p.Locale
	}
	return ""
}

// IsClosed reports whether the room has been torn down
func (s *GameSession) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Join seats a new connected player. The creator of a room gets
// room_created instead of room_joined and no player_joined announcement.
func (s *GameSession) Join(handle, playerID, nickname, locale string, creator bool) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrRoomNotFound
	}

	player, err := s.room.AddPlayer(playerID, nickname, locale, handle)
	if err != nil {
		return nil, err
	}
	s.bind(handle, playerID)
	s.idleSince = time.Time{}

	code := s.room.Code
	if creator {
		s.publish(
			domain.NewPlayerEvent(domain.EventRoomCreated, code, playerID, &domain.RoomCreatedPayload{RoomCode: code, PlayerID: playerID}),
			s.stateEvent(),
		)
	} else {
		s.publish(
			domain.NewPlayerEvent(domain.EventRoomJoined, code, playerID, &domain.RoomJoinedPayload{RoomCode: code, PlayerID: playerID}),
			s.stateEvent(),
			domain.NewEvent(domain.EventPlayerJoined, code, &domain.PlayerJoinedPayload{Player: player.ToInfo()}),
		)
	}

	s.logger.Info("player joined",
		zap.String("playerID", playerID),
		zap.Bool("creator", creator),
		zap.Int("players", s.room.PlayerCount()),
	)
	return player, nil
}

// Reconnect rebinds an existing player to a new connection. Works in any phase.
func (s *GameSession) Reconnect(handle, playerID, locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrRoomNotFound
	}

	player, err := s.room.GetPlayer(playerID)
	if err != nil {
		return err
	}

	s.supervisor.Cancel(s.key(playerID))
	player.Reconnect(handle)
	if locale != "" {
		player.Locale = locale
	}
	s.bind(handle, playerID)
	s.idleSince = time.Time{}

	code := s.room.Code
	events := []*domain.GameEvent{
		domain.NewPlayerEvent(domain.EventRoomJoined, code, playerID, &domain.RoomJoinedPayload{RoomCode: code, PlayerID: playerID}),
		s.stateEvent(),
	}
	if len(player.Hand) > 0 {
		events = append(events, s.handEvent(player))
	}
	events = append(events, domain.NewEvent(domain.EventPlayerReconnected, code, &domain.PlayerPayload{PlayerID: playerID}))
	s.publish(events...)

	s.logger.Info("player reconnected", zap.String("playerID", playerID), zap.String("phase", s.room.Phase.String()))
	return nil
}

// ChangeLocale stores a new locale for the player
func (s *GameSession) ChangeLocale(playerID, locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.room.Players[playerID]
	if !ok || s.closed {
		return domain.ErrIgnored
	}
	player.Locale = locale

	s.publish(domain.NewPlayerEvent(domain.EventLocaleChanged, s.room.Code, playerID, &domain.LocaleChangedPayload{Locale: locale}))
	return nil
}

// StartGame starts the game (host only)
func (s *GameSession) StartGame(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.Start(playerID); err != nil {
		return err
	}

	events := []*domain.GameEvent{s.stateEvent()}
	for _, p := range s.room.OrderedPlayers() {
		events = append(events, s.handEvent(p))
	}
	s.publish(events...)

	s.logger.Info("game started", zap.Int("players", s.room.PlayerCount()))
	return nil
}

// SelectPhrase records the judge's phrase choice
func (s *GameSession) SelectPhrase(playerID, phraseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	phrase, err := s.room.SelectPhrase(playerID, phraseID)
	if err != nil {
		return err
	}

	s.publish(
		domain.NewEvent(domain.EventPhraseSelected, s.room.Code, &domain.PhraseSelectedPayload{Phrase: phrase}),
		s.stateEvent(),
	)
	return nil
}

// SubmitMeme plays a card from the player's hand
func (s *GameSession) SubmitMeme(playerID, memeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	complete, err := s.room.SubmitMeme(playerID, memeID)
	if err != nil {
		return err
	}

	s.publish(
		domain.NewEvent(domain.EventPlayerSubmitted, s.room.Code, &domain.PlayerPayload{PlayerID: playerID}),
		s.handEvent(s.room.Players[playerID]),
		s.stateEvent(),
	)

	if complete {
		s.logger.Debug("all memes submitted", zap.Int("round", s.room.CurrentRound.Number))
	}
	return nil
}

// SelectWinner resolves the judge's positional pick
func (s *GameSession) SelectWinner(playerID string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	winnerID, err := s.room.SelectWinner(playerID, position)
	if err != nil {
		return err
	}

	s.publish(
		domain.NewEvent(domain.EventWinnerSelected, s.room.Code, &domain.WinnerSelectedPayload{WinnerID: winnerID, PositionIndex: position}),
		s.stateEvent(),
	)

	s.logger.Info("round won",
		zap.Int("round", s.room.CurrentRound.Number),
		zap.String("winnerID", winnerID),
	)
	return nil
}

// NextRound starts the following round (winner only)
func (s *GameSession) NextRound(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.NextRound(playerID); err != nil {
		return err
	}

	state := s.room.Snapshot()
	events := []*domain.GameEvent{
		domain.NewEvent(domain.EventRoomState, s.room.Code, &domain.RoomStatePayload{State: state}),
		domain.NewEvent(domain.EventNewRound, s.room.Code, &domain.NewRoundPayload{Round: state.CurrentRound}),
	}
	for _, p := range s.room.OrderedPlayers() {
		events = append(events, s.handEvent(p))
	}
	s.publish(events...)
	return nil
}

// Disconnect marks the player behind handle as gone. In the lobby it arms the
// grace-period eviction; in game the seat is kept for a reconnect.
func (s *GameSession) Disconnect(playerID, handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.room.Players[playerID]
	if !ok || s.closed || player.Handle != handle {
		return
	}
	player.Disconnect()
	if s.connectedCount() == 0 {
		s.idleSince = time.Now()
	}

	s.publish(
		domain.NewEvent(domain.EventPlayerLeft, s.room.Code, &domain.PlayerPayload{PlayerID: playerID}),
		s.stateEvent(),
	)

	if s.room.Phase == domain.PhaseLobby {
		s.supervisor.Arm(s.key(playerID), func(seq uint64) {
			s.expire(playerID, seq)
		})
		s.logger.Info("player disconnected, seat held",
			zap.String("playerID", playerID),
			zap.Duration("grace", s.supervisor.Grace()),
		)
		return
	}

	s.logger.Info("player disconnected", zap.String("playerID", playerID), zap.String("phase", s.room.Phase.String()))
}

// expire is the grace-period callback. It re-checks everything under the
// lock because a reconnect may have raced the timer.
func (s *GameSession) expire(playerID string, seq uint64) {
	s.mu.Lock()

	if s.closed || !s.supervisor.Claim(s.key(playerID), seq) {
		s.mu.Unlock()
		return
	}
	player, ok := s.room.Players[playerID]
	if !ok || player.IsConnected() || s.room.Phase != domain.PhaseLobby {
		s.mu.Unlock()
		return
	}

	_ = s.room.RemovePlayer(playerID)
	s.logger.Info("player evicted after grace period",
		zap.String("playerID", playerID),
		zap.String("hostID", s.room.HostID),
	)

	empty := s.room.IsEmpty()
	if empty {
		s.closed = true
	} else {
		s.publish(s.stateEvent())
	}
	s.mu.Unlock()

	if empty && s.onEmpty != nil {
		s.onEmpty(s)
	}
}

// AbandonedFor reports how long nobody has been connected, or 0.
func (s *GameSession) AbandonedFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idleSince.IsZero() {
		return 0
	}
	return now.Sub(s.idleSince)
}

// abandon removes every player if the room is still unattended after timeout.
// It reports whether the room was emptied.
func (s *GameSession) abandon(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.idleSince.IsZero() || now.Sub(s.idleSince) < timeout {
		return false
	}
	for _, p := range s.room.OrderedPlayers() {
		s.supervisor.Cancel(s.key(p.ID))
		_ = s.room.RemovePlayer(p.ID)
	}
	s.closed = true
	return true
}

// Close marks the session closed and cancels its pending evictions
func (s *GameSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id := range s.room.Players {
		s.supervisor.Cancel(s.key(id))
	}
}

func (s *GameSession) key(playerID string) Binding {
	return Binding{RoomCode: s.room.Code, PlayerID: playerID}
}

func (s *GameSession) bind(handle, playerID string) {
	if prev := s.registry.Bind(handle, s.key(playerID)); prev != "" {
		s.logger.Debug("binding superseded", zap.String("playerID", playerID), zap.String("previousHandle", prev))
	}
}

func (s *GameSession) connectedCount() int {
	n := 0
	for _, p := range s.room.Players {
		if p.IsConnected() {
			n++
		}
	}
	return n
}

func (s *GameSession) stateEvent() *domain.GameEvent {
	return domain.NewEvent(domain.EventRoomState, s.room.Code, &domain.RoomStatePayload{State: s.room.Snapshot()})
}

func (s *GameSession) handEvent(p *domain.Player) *domain.GameEvent {
	return domain.NewPlayerEvent(domain.EventHandDealt, s.room.Code, p.ID, &domain.HandDealtPayload{Hand: p.HandCopy()})
}

// publish delivers events in order. Must be called with mu held; sends never block.
func (s *GameSession) publish(events ...*domain.GameEvent) {
	for _, event := range events {
		if event.IsTargeted() {
			if p, ok := s.room.Players[event.PlayerID]; ok && p.IsConnected() {
				s.gateway.SendTo(p.Handle, event)
			}
			continue
		}
		for _, p := range s.room.OrderedPlayers() {
			if p.IsConnected() {
				s.gateway.SendTo(p.Handle, event)
			}
		}
	}
}
