package app

import (
	"sync"
	"time"
)

// Timer is a pending one-shot callback
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Tests substitute a manual scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules on the wall clock
var SystemScheduler Scheduler = clockScheduler{}

type eviction struct {
	timer Timer
	seq   uint64
}

// Supervisor tracks grace-period evictions for players who dropped in the lobby.
//
// Each armed eviction carries a sequence number. The callback must Claim its
// number under the room lock before acting; a reconnect, a re-arm, or Stop in
// the meantime makes the claim fail.
type Supervisor struct {
	scheduler Scheduler
	grace     time.Duration

	mu      sync.Mutex
	pending map[Binding]*eviction
	seq     uint64
	stopped bool
}

// NewSupervisor creates a supervisor that evicts after grace
func NewSupervisor(scheduler Scheduler, grace time.Duration) *Supervisor {
	if scheduler == nil {
		scheduler = SystemScheduler
	}
	return &Supervisor{
		scheduler: scheduler,
		grace:     grace,
		pending:   make(map[Binding]*eviction),
	}
}

// Grace returns the configured grace period
func (s *Supervisor) Grace() time.Duration {
	return s.grace
}

// Arm schedules fire for key, replacing any eviction already pending for it
func (s *Supervisor) Arm(key Binding, fire func(seq uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}

	s.seq++
	seq := s.seq
	s.pending[key] = &eviction{
		timer: s.scheduler.AfterFunc(s.grace, func() { fire(seq) }),
		seq:   seq,
	}
}

// Cancel drops the pending eviction for key, if any
func (s *Supervisor) Cancel(key Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev, ok := s.pending[key]; ok {
		ev.timer.Stop()
		delete(s.pending, key)
	}
}

// Claim reports whether seq is still the live eviction for key and consumes it
func (s *Supervisor) Claim(key Binding, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.pending[key]
	if !ok || ev.seq != seq {
		return false
	}
	delete(s.pending, key)
	return true
}

// Pending returns the number of armed evictions
func (s *Supervisor) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending eviction and refuses new ones
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, ev := range s.pending {
		ev.timer.Stop()
		delete(s.pending, key)
	}
}
