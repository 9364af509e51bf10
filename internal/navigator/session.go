// Package navigator drives the interactive side of a call page: the search
// session with its keyboard selection, and the video-synchronized
// highlighting of the transcript and chat panes.
package navigator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"callsearch/internal/model"
)

// State is the lifecycle position of a search session.
type State int

const (
	StateIdle State = iota
	StateQuerying
	StateResultsShown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuerying:
		return "querying"
	case StateResultsShown:
		return "results"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Key is a navigation key understood by the session.
type Key int

const (
	KeyArrowUp Key = iota
	KeyArrowDown
	KeyEnter
	KeyEscape
)

// Searcher produces ranked results for a query.
type Searcher interface {
	Search(query string, filter model.Filter) []model.SearchResult
}

// Scroller brings a result row into view.
type Scroller interface {
	ScrollIntoView(index int)
}

// ResultClickFunc receives the timestamp of an activated result.
type ResultClickFunc func(timestamp string, result *model.SearchResult)

// DefaultDebounce is the quiet period before a typed query is searched.
const DefaultDebounce = 150 * time.Millisecond

// Session is one search modal. Its methods may be called from any goroutine;
// callbacks run without the session lock held.
type Session struct {
	id       string
	log      *zap.Logger
	searcher Searcher
	scroller Scroller
	onClick  ResultClickFunc
	onChange func()
	debounce *Debouncer

	mu       sync.Mutex
	state    State
	query    string
	filter   model.Filter
	results  []model.SearchResult
	selected int
	gen      uint64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithScroller sets the list that follows the selection.
func WithScroller(s Scroller) SessionOption {
	return func(sess *Session) { sess.scroller = s }
}

// WithResultClick sets the callback for Enter and clicks.
func WithResultClick(fn ResultClickFunc) SessionOption {
	return func(sess *Session) { sess.onClick = fn }
}

// WithChangeListener is called after every visible state change.
func WithChangeListener(fn func()) SessionOption {
	return func(sess *Session) { sess.onChange = fn }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) SessionOption {
	return func(sess *Session) { sess.debounce = NewDebouncer(d) }
}

// WithSessionLogger sets the session's logger.
func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(sess *Session) { sess.log = l }
}

// NewSession creates an idle session over searcher.
func NewSession(searcher Searcher, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		log:      zap.NewNop(),
		searcher: searcher,
		debounce: NewDebouncer(DefaultDebounce),
		filter:   model.FilterAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session", s.id))
	s.log.Debug("session created")
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the current query text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Filter returns the active type filter.
func (s *Session) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Results returns a copy of the current result list.
func (s *Session) Results() []model.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SearchResult(nil), s.results...)
}

// Selected returns the selected result index. It is 0 when there are no
// results.
func (s *Session) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Open makes a closed session accept input again.
func (s *Session) Open() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.log.Debug("session opened")
	s.changed()
}

// OnQueryChange records the typed query and schedules a search after the
// debounce period. An empty query clears the results at once.
func (s *Session) OnQueryChange(q string) {
	s.mu.Lock()
	s.query = q
	s.gen++
	gen := s.gen
	if q == "" {
		s.state = StateIdle
		s.results = nil
		s.selected = 0
		s.mu.Unlock()
		s.debounce.Cancel()
		s.changed()
		return
	}
	s.state = StateQuerying
	s.mu.Unlock()

	if s.debounce.Debounce(func() { s.run(gen) }) {
		s.log.Debug("query superseded", zap.String("query", q))
	}
	s.changed()
}

// SetFilter changes the type filter and recomputes results immediately.
func (s *Session) SetFilter(f model.Filter) {
	s.mu.Lock()
	s.filter = f
	s.gen++
	gen := s.gen
	empty := s.query == "" || s.state == StateClosed
	s.mu.Unlock()

	if empty {
		s.changed()
		return
	}
	s.debounce.Flush(func() { s.run(gen) })
}

// Rerun searches the current query again, for when the searched content
// changed underneath the session. It reports whether a search ran.
func (s *Session) Rerun() bool {
	s.mu.Lock()
	active := s.query != "" && (s.state == StateQuerying || s.state == StateResultsShown)
	if !active {
		s.mu.Unlock()
		return false
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.debounce.Flush(func() { s.run(gen) })
	return true
}

// run searches for the query that was current at generation gen and publishes
// the results unless the session moved on in the meantime.
func (s *Session) run(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	q, f := s.query, s.filter
	s.mu.Unlock()

	results := s.searcher.Search(q, f)

	s.mu.Lock()
	if gen != s.gen || s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.results = results
	s.selected = 0
	s.state = StateResultsShown
	s.mu.Unlock()

	s.log.Debug("results",
		zap.String("query", q),
		zap.String("filter", string(f)),
		zap.Int("count", len(results)),
	)
	if len(results) > 0 {
		s.scrollTo(0)
	}
	s.changed()
}

// OnKeyDown handles a navigation key. It reports whether the key did
// anything.
func (s *Session) OnKeyDown(k Key) bool {
	switch k {
	case KeyArrowDown:
		return s.move(1)
	case KeyArrowUp:
		return s.move(-1)
	case KeyEnter:
		s.mu.Lock()
		i, n := s.selected, len(s.results)
		s.mu.Unlock()
		if n == 0 {
			return false
		}
		return s.activate(i)
	case KeyEscape:
		s.Close()
		return true
	}
	return false
}

func (s *Session) move(delta int) bool {
	s.mu.Lock()
	n := len(s.results)
	if n == 0 {
		s.mu.Unlock()
		return false
	}
	next := s.selected + delta
	if next < 0 {
		next = 0
	}
	if next > n-1 {
		next = n - 1
	}
	moved := next != s.selected
	s.selected = next
	s.mu.Unlock()

	if moved {
		s.scrollTo(next)
		s.changed()
	}
	return moved
}

// Click selects result i and activates it.
func (s *Session) Click(i int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.results) {
		s.mu.Unlock()
		return false
	}
	moved := i != s.selected
	s.selected = i
	s.mu.Unlock()

	if moved {
		s.scrollTo(i)
	}
	return s.activate(i)
}

// activate closes the session and reports result i to the click callback.
func (s *Session) activate(i int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.results) {
		s.mu.Unlock()
		return false
	}
	r := s.results[i]
	s.resetLocked()
	s.mu.Unlock()

	s.debounce.Cancel()
	s.log.Debug("result activated", zap.String("type", string(r.Type)), zap.String("timestamp", r.Timestamp))
	if s.onClick != nil {
		s.onClick(r.Timestamp, &r)
	}
	s.changed()
	return true
}

// Close ends the session without activating anything.
func (s *Session) Close() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.debounce.Cancel()
	s.log.Debug("session closed")
	s.changed()
}

func (s *Session) resetLocked() {
	s.state = StateClosed
	s.query = ""
	s.results = nil
	s.selected = 0
	s.gen++
}

func (s *Session) scrollTo(i int) {
	if s.scroller != nil {
		s.scroller.ScrollIntoView(i)
	}
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
