package navigator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"callsearch/internal/artifact"
	"callsearch/internal/model"
	"callsearch/internal/search"
	"callsearch/internal/timestamp"
)

var (
	// ErrStale is returned when a load finished after the page moved on.
	ErrStale = errors.New("navigation superseded")
	// ErrNoCall is returned when the page has no call open.
	ErrNoCall = errors.New("no call open")
)

// Page owns the call currently on screen and everything running on its
// behalf. Opening another call or closing the page tears it all down.
type Page struct {
	log        *zap.Logger
	src        artifact.Source
	player     Player
	timing     Timing
	debounce   time.Duration
	views      map[Pane]Viewport
	scroller   Scroller
	onChange   func()
	onDeepLink func(fragment string)

	mu          sync.Mutex
	gen         uint64
	cur         *Call
	playerReady bool
	playerState int
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithPageLogger sets the logger.
func WithPageLogger(l *zap.Logger) PageOption {
	return func(p *Page) { p.log = l }
}

// WithPageTiming sets the video sync intervals.
func WithPageTiming(t Timing) PageOption {
	return func(p *Page) { p.timing = t }
}

// WithSearchDebounce sets the search session debounce.
func WithSearchDebounce(d time.Duration) PageOption {
	return func(p *Page) { p.debounce = d }
}

// WithViewport attaches the view of a pane.
func WithViewport(pane Pane, v Viewport) PageOption {
	return func(p *Page) { p.views[pane] = v }
}

// WithResultScroller attaches the search result list.
func WithResultScroller(s Scroller) PageOption {
	return func(p *Page) { p.scroller = s }
}

// WithPageChangeListener is called when the session or call changes.
func WithPageChangeListener(fn func()) PageOption {
	return func(p *Page) { p.onChange = fn }
}

// WithDeepLinkListener receives "#t=N" fragments when a result is activated.
func WithDeepLinkListener(fn func(fragment string)) PageOption {
	return func(p *Page) { p.onDeepLink = fn }
}

// NewPage creates an empty page.
func NewPage(src artifact.Source, player Player, opts ...PageOption) *Page {
	p := &Page{
		log:      zap.NewNop(),
		src:      src,
		player:   player,
		timing:   DefaultTiming(),
		debounce: DefaultDebounce,
		views:    make(map[Pane]Viewport),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Call is one loaded call and its running controllers.
type Call struct {
	ref     artifact.CallRef
	log     *zap.Logger
	engine  *search.Engine
	session *Session
	sync    *VideoSync

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	bundle     *artifact.Bundle
	link       string
	started    bool
	closed     bool
	seekCancel context.CancelFunc
	seeks      sync.WaitGroup
}

// Ref identifies the call.
func (c *Call) Ref() artifact.CallRef { return c.ref }

// Engine is the call's search engine.
func (c *Call) Engine() *search.Engine { return c.engine }

// Session is the call's search session.
func (c *Call) Session() *Session { return c.session }

// Sync is the call's video sync controller.
func (c *Call) Sync() *VideoSync { return c.sync }

// Bundle returns the loaded artifacts.
func (c *Call) Bundle() *artifact.Bundle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bundle
}

// DeepLink returns the fragment of the last activated result, or "".
func (c *Call) DeepLink() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.link
}

// Current returns the open call, or nil.
func (p *Page) Current() *Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur
}

// Open loads ref and makes it the current call. The previous call is torn
// down first. If another Open or Close happens while ref is loading, the
// load is discarded and ErrStale returned.
func (p *Page) Open(ctx context.Context, ref artifact.CallRef) (*Call, error) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	old := p.cur
	p.cur = nil
	p.mu.Unlock()

	if old != nil {
		old.teardown()
	}

	b := artifact.Load(ctx, p.src, ref, p.log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := p.newCall(ref, b)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		c.teardown()
		p.log.Debug("discarded stale load", zap.String("call", ref.Key()))
		return nil, ErrStale
	}
	p.cur = c
	if p.playerReady {
		c.sync.OnReady()
	}
	c.sync.OnStateChange(p.playerState)
	c.start()
	p.mu.Unlock()

	p.log.Info("call opened",
		zap.String("call", ref.Key()),
		zap.Int("artifacts", b.Count()),
		zap.Bool("sync", b.Config.Enabled()),
	)
	p.changed()
	return c, nil
}

func (p *Page) newCall(ref artifact.CallRef, b *artifact.Bundle) *Call {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Call{
		ref:    ref,
		log:    p.log.With(zap.String("call", ref.Key())),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.sync = NewVideoSync(p.player, WithTiming(p.timing), WithSyncLogger(c.log))
	c.engine = search.New(search.Sources{}, c.sync.SyncConfig, search.WithLogger(c.log))
	c.session = NewSession(c.engine,
		WithDebounce(p.debounce),
		WithScroller(p.scroller),
		WithResultClick(p.HandleResultClick),
		WithChangeListener(p.changed),
		WithSessionLogger(c.log),
	)
	c.apply(b, p.views)
	return c
}

// apply installs a bundle into the running controllers.
func (c *Call) apply(b *artifact.Bundle, views map[Pane]Viewport) {
	c.mu.Lock()
	c.bundle = b
	c.mu.Unlock()

	c.sync.SetSyncConfig(b.Config)
	c.engine.SetSources(search.Sources{
		Transcript: b.Transcript,
		Chat:       b.Chat,
		Payloads:   b.Payloads,
	})

	var stamps []string
	for _, e := range c.engine.Transcript() {
		stamps = append(stamps, e.Timestamp)
	}
	c.sync.SetPane(PaneTranscript, stamps, views[PaneTranscript])

	stamps = nil
	for _, m := range c.engine.Chat() {
		stamps = append(stamps, m.Timestamp)
	}
	c.sync.SetPane(PaneChat, stamps, views[PaneChat])
}

// Refresh reloads the current call's artifacts in place, keeping the player
// position. An active search is run again against the new content.
func (p *Page) Refresh(ctx context.Context) error {
	p.mu.Lock()
	c, gen := p.cur, p.gen
	p.mu.Unlock()
	if c == nil {
		return ErrNoCall
	}

	b := artifact.Load(ctx, p.src, c.ref, p.log)
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if gen != p.gen || p.cur != c {
		p.mu.Unlock()
		return ErrStale
	}
	c.apply(b, p.views)
	p.mu.Unlock()

	rerun := c.session.Rerun()
	p.log.Debug("call refreshed",
		zap.String("call", c.ref.Key()),
		zap.Int("artifacts", b.Count()),
		zap.Bool("rerun", rerun),
	)
	p.changed()
	return nil
}

// Close tears down the current call.
func (p *Page) Close() {
	p.mu.Lock()
	p.gen++
	old := p.cur
	p.cur = nil
	p.mu.Unlock()

	if old != nil {
		old.teardown()
		p.log.Debug("call closed", zap.String("call", old.ref.Key()))
	}
	p.changed()
}

// HandleResultClick seeks the video to a transcript-clock timestamp and
// records the matching "#t=N" deep link.
func (p *Page) HandleResultClick(ts string, r *model.SearchResult) {
	c := p.Current()
	if c == nil {
		return
	}
	secs := c.sync.SyncConfig().Adjust(ts)
	p.seekTo(c, secs)
}

// OpenFragment seeks to a "#t=N" deep link. It reports whether the fragment
// was valid.
func (p *Page) OpenFragment(fragment string) bool {
	secs, ok := timestamp.ParseDeepLink(fragment)
	if !ok {
		return false
	}
	c := p.Current()
	if c == nil {
		return false
	}
	p.seekTo(c, secs)
	return true
}

func (p *Page) seekTo(c *Call, secs float64) {
	link := timestamp.DeepLink(secs)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.link = link
	if c.seekCancel != nil {
		c.seekCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.seekCancel = cancel
	c.seeks.Add(1)
	c.mu.Unlock()

	if p.onDeepLink != nil {
		p.onDeepLink(link)
	}

	go func() {
		defer c.seeks.Done()
		defer cancel()
		if err := c.sync.Seek(ctx, secs); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("seek abandoned", zap.Float64("seconds", secs), zap.Error(err))
		}
	}()
}

// OnPlayerReady records that the player accepts commands and forwards the
// event to the current call. Calls opened later inherit it.
func (p *Page) OnPlayerReady() {
	p.mu.Lock()
	p.playerReady = true
	c := p.cur
	p.mu.Unlock()

	if c != nil {
		c.sync.OnReady()
	}
}

// OnPlayerStateChange forwards a player state change to the current call.
func (p *Page) OnPlayerStateChange(code int) {
	p.mu.Lock()
	p.playerState = code
	c := p.cur
	p.mu.Unlock()

	if c != nil {
		c.sync.OnStateChange(code)
	}
}

// start launches the poll loop.
func (c *Call) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	go func() {
		defer close(c.done)
		_ = c.sync.Run(c.ctx)
	}()
}

// teardown stops every goroutine and timer of the call and waits for them.
func (c *Call) teardown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	started := c.started
	c.mu.Unlock()

	c.session.Close()
	c.cancel()
	c.seeks.Wait()
	if started {
		<-c.done
	}
}

func (p *Page) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}
