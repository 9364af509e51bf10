package navigator

import (
	"sync"
	"time"
)

// Player state codes reported by ClockPlayer.
const (
	PlayerStatePaused = 2
)

// ClockPlayer is a Player without video: its position advances with the
// wall clock while playing. The terminal UI uses it to replay a call at real
// speed.
type ClockPlayer struct {
	now func() time.Time

	mu      sync.Mutex
	pos     float64
	since   time.Time
	playing bool
	onState func(code int)
}

// NewClockPlayer creates a paused player at position 0. onState, if not nil,
// receives every state change.
func NewClockPlayer(onState func(code int)) *ClockPlayer {
	return &ClockPlayer{now: time.Now, onState: onState}
}

// SetStateListener replaces the state callback.
func (p *ClockPlayer) SetStateListener(fn func(code int)) {
	p.mu.Lock()
	p.onState = fn
	p.mu.Unlock()
}

func (p *ClockPlayer) SeekTo(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	p.mu.Lock()
	p.pos = seconds
	p.since = p.now()
	p.mu.Unlock()
	return nil
}

func (p *ClockPlayer) PlayVideo() {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return
	}
	p.since = p.now()
	p.playing = true
	fn := p.onState
	p.mu.Unlock()

	if fn != nil {
		fn(PlayerStatePlaying)
	}
}

func (p *ClockPlayer) PauseVideo() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.pos = p.positionLocked()
	p.playing = false
	fn := p.onState
	p.mu.Unlock()

	if fn != nil {
		fn(PlayerStatePaused)
	}
}

// Playing reports whether the clock is running.
func (p *ClockPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *ClockPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *ClockPlayer) positionLocked() float64 {
	if !p.playing {
		return p.pos
	}
	return p.pos + p.now().Sub(p.since).Seconds()
}
