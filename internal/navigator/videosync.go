package navigator

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"callsearch/internal/timestamp"
)

// PlayerStatePlaying is the embed state code for "playing".
const PlayerStatePlaying = 1

// Player is the embedded video player.
type Player interface {
	SeekTo(seconds float64) error
	PlayVideo()
	PauseVideo()
	CurrentTime() float64
}

// Pane identifies a synchronized list.
type Pane int

const (
	PaneTranscript Pane = iota
	PaneChat
)

func (p Pane) String() string {
	if p == PaneChat {
		return "chat"
	}
	return "transcript"
}

// Viewport is the scrollable view of a pane.
type Viewport interface {
	// RelativePosition reports where row i sits as a fraction of the viewport
	// height from the top. ok is false when the row is not laid out.
	RelativePosition(i int) (pos float64, ok bool)
	// CenterOn scrolls so row i is in the middle of the viewport.
	CenterOn(i int)
}

// Band is the part of the viewport in which a current row is left alone.
var (
	BandTop    = 0.2
	BandBottom = 0.7
)

// Timing holds the video sync intervals.
type Timing struct {
	PollInterval     time.Duration
	ScrollCooldown   time.Duration
	SeekThreshold    time.Duration
	InitialSeekDelay time.Duration
	SeekRetryDelay   time.Duration
	SettleDelay      time.Duration
}

// DefaultTiming matches the config defaults.
func DefaultTiming() Timing {
	return Timing{
		PollInterval:     100 * time.Millisecond,
		ScrollCooldown:   3 * time.Second,
		SeekThreshold:    2 * time.Second,
		InitialSeekDelay: 500 * time.Millisecond,
		SeekRetryDelay:   time.Second,
		SettleDelay:      300 * time.Millisecond,
	}
}

// CurrentIndex returns the entry owning t: entry i owns [times[i], times[i+1])
// and the last entry owns everything after it. It is -1 before the first
// entry. times must be ascending.
func CurrentIndex(times []float64, t float64) int {
	return sort.Search(len(times), func(i int) bool { return times[i] > t }) - 1
}

type pane struct {
	stamps   []string  // transcript-clock timestamps
	times    []float64 // video-clock seconds
	current  int
	followed int // last index auto-scroll handled
	view     Viewport
}

func (p *pane) retime(cfg timestamp.SyncConfig) {
	p.times = make([]float64, len(p.stamps))
	for i, ts := range p.stamps {
		p.times[i] = cfg.Adjust(ts)
	}
}

// VideoSync highlights the transcript and chat entries that match the video
// position and keeps them scrolled into view.
type VideoSync struct {
	log    *zap.Logger
	player Player
	timing Timing
	now    func() time.Time

	readyOnce sync.Once
	ready     chan struct{}
	wake      chan struct{}

	mu             sync.Mutex
	cfg            timestamp.SyncConfig
	panes          map[Pane]*pane
	playing        bool
	currentTime    float64
	ticked         bool
	chatBroken     bool
	lastTranscript time.Time // last manual transcript scroll
	seeked         bool      // a seek has completed since ready
}

// SyncOption configures a VideoSync.
type SyncOption func(*VideoSync)

// WithTiming overrides DefaultTiming.
func WithTiming(t Timing) SyncOption {
	return func(v *VideoSync) { v.timing = t }
}

// WithClock replaces time.Now for cooldown checks.
func WithClock(now func() time.Time) SyncOption {
	return func(v *VideoSync) { v.now = now }
}

// WithSyncLogger sets the logger.
func WithSyncLogger(l *zap.Logger) SyncOption {
	return func(v *VideoSync) { v.log = l }
}

// NewVideoSync creates a controller for player.
func NewVideoSync(player Player, opts ...SyncOption) *VideoSync {
	v := &VideoSync{
		log:    zap.NewNop(),
		player: player,
		timing: DefaultTiming(),
		now:    time.Now,
		ready:  make(chan struct{}),
		wake:   make(chan struct{}, 1),
		panes:  make(map[Pane]*pane),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetPane installs the entries of a pane as transcript-clock timestamps.
func (v *VideoSync) SetPane(p Pane, stamps []string, view Viewport) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pn := &pane{stamps: stamps, current: -1, followed: -1, view: view}
	pn.retime(v.cfg)
	v.panes[p] = pn
}

// SetSyncConfig replaces the transcript-to-video offset and re-derives every
// pane's video times.
func (v *VideoSync) SetSyncConfig(cfg timestamp.SyncConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cfg = cfg
	for _, pn := range v.panes {
		pn.retime(cfg)
		pn.current = -1
		pn.followed = -1
	}
}

// SyncConfig returns the current offset configuration.
func (v *VideoSync) SyncConfig() timestamp.SyncConfig {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

// OnReady is called by the player once it accepts commands.
func (v *VideoSync) OnReady() {
	v.readyOnce.Do(func() {
		close(v.ready)
		v.log.Debug("player ready")
	})
}

// Ready is closed once OnReady has been called.
func (v *VideoSync) Ready() <-chan struct{} { return v.ready }

// OnStateChange is called by the player on every state transition.
func (v *VideoSync) OnStateChange(code int) {
	v.mu.Lock()
	v.playing = code == PlayerStatePlaying
	v.mu.Unlock()

	select {
	case v.wake <- struct{}{}:
	default:
	}
}

// Playing reports whether the player last reported the playing state.
func (v *VideoSync) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// CurrentVideoTime returns the last polled video position.
func (v *VideoSync) CurrentVideoTime() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentTime
}

// Current returns the current entry of a pane, or -1.
func (v *VideoSync) Current(p Pane) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if pn, ok := v.panes[p]; ok {
		return pn.current
	}
	return -1
}

// Suppressed reports whether auto-scroll is paused for a pane.
func (v *VideoSync) Suppressed(p Pane) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.suppressedLocked(p)
}

func (v *VideoSync) suppressedLocked(p Pane) bool {
	switch p {
	case PaneChat:
		return v.chatBroken
	default:
		return !v.lastTranscript.IsZero() && v.now().Sub(v.lastTranscript) < v.timing.ScrollCooldown
	}
}

type scrollRequest struct {
	pane  Pane
	view  Viewport
	index int
	force bool
}

// OnVideoTick records the video position and moves the highlights. A jump
// larger than the seek threshold restores chat sync.
func (v *VideoSync) OnVideoTick(t float64) {
	v.mu.Lock()
	if v.ticked && math.Abs(t-v.currentTime) > v.timing.SeekThreshold.Seconds() && v.chatBroken {
		v.chatBroken = false
		v.log.Debug("seek restored chat sync", zap.Float64("from", v.currentTime), zap.Float64("to", t))
	}
	v.currentTime = t
	v.ticked = true

	if !v.cfg.Enabled() {
		v.mu.Unlock()
		return
	}

	var reqs []scrollRequest
	for _, p := range []Pane{PaneTranscript, PaneChat} {
		pn, ok := v.panes[p]
		if !ok {
			continue
		}
		idx := CurrentIndex(pn.times, t)
		pn.current = idx
		// An entry that changed while the pane was paused is followed as
		// soon as the pause ends.
		if idx < 0 || idx == pn.followed || pn.view == nil || v.suppressedLocked(p) {
			continue
		}
		pn.followed = idx
		reqs = append(reqs, scrollRequest{pane: p, view: pn.view, index: idx})
	}
	v.mu.Unlock()

	v.scroll(reqs)
}

// scroll centers each requested row unless it already sits inside the band.
func (v *VideoSync) scroll(reqs []scrollRequest) {
	for _, r := range reqs {
		if !r.force {
			if pos, ok := r.view.RelativePosition(r.index); ok && pos >= BandTop && pos <= BandBottom {
				continue
			}
		}
		r.view.CenterOn(r.index)
	}
}

// OnManualScroll records a user scroll. The transcript pane pauses for the
// cooldown after the last scroll; the chat pane stays paused until OnResync
// or a large seek.
func (v *VideoSync) OnManualScroll(p Pane) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch p {
	case PaneChat:
		if !v.chatBroken {
			v.log.Debug("chat sync broken by manual scroll")
		}
		v.chatBroken = true
	default:
		v.lastTranscript = v.now()
	}
}

// OnResync restores sync on both panes and centers them on the current
// entries.
func (v *VideoSync) OnResync() {
	v.jump(v.CurrentVideoTime())
}

// jump sets the video position, clears every suppression and centers both
// panes on the owning entries regardless of the band.
func (v *VideoSync) jump(t float64) {
	v.mu.Lock()
	v.currentTime = t
	v.ticked = true
	v.chatBroken = false
	v.lastTranscript = time.Time{}

	var reqs []scrollRequest
	for _, p := range []Pane{PaneTranscript, PaneChat} {
		pn, ok := v.panes[p]
		if !ok {
			continue
		}
		pn.current = CurrentIndex(pn.times, t)
		pn.followed = pn.current
		if pn.current >= 0 && pn.view != nil {
			reqs = append(reqs, scrollRequest{pane: p, view: pn.view, index: pn.current, force: true})
		}
	}
	v.mu.Unlock()

	v.scroll(reqs)
}

// Run polls the player while it is playing until ctx is cancelled. Polling
// starts and stops with OnStateChange.
func (v *VideoSync) Run(ctx context.Context) error {
	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stop()

	update := func() {
		switch playing := v.Playing(); {
		case playing && ticker == nil:
			ticker = time.NewTicker(v.timing.PollInterval)
			tick = ticker.C
			v.log.Debug("polling started")
		case !playing && ticker != nil:
			stop()
			v.log.Debug("polling stopped")
		}
	}
	update()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-v.wake:
			update()
		case <-tick:
			v.OnVideoTick(v.player.CurrentTime())
		}
	}
}
