package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"callsearch/internal/artifact"
	"callsearch/internal/model"
	"callsearch/internal/navigator"
	"callsearch/internal/timestamp"
)

const refreshInterval = 200 * time.Millisecond

type (
	openedMsg struct {
		call *navigator.Call
		err  error
	}
	changedMsg struct{}
	tickMsg    time.Time
)

// Option configures the browser.
type Option func(*options)

type options struct {
	log      *zap.Logger
	timing   navigator.Timing
	debounce time.Duration
	onSearch func(model.QueryLogEntry)
}

// WithLogger sets the logger passed down to the page.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTiming sets the video sync intervals.
func WithTiming(t navigator.Timing) Option {
	return func(o *options) { o.timing = t }
}

// WithSearchDebounce sets the search debounce.
func WithSearchDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithSearchLog receives every search the user jumps from.
func WithSearchLog(fn func(model.QueryLogEntry)) Option {
	return func(o *options) { o.onSearch = fn }
}

// Model browses one call.
type Model struct {
	ref      artifact.CallRef
	page     *navigator.Page
	player   *navigator.ClockPlayer
	call     *navigator.Call
	changes  chan struct{}
	onSearch func(model.QueryLogEntry)

	input      textinput.Model
	help       help.Model
	results    *lineView
	transcript *lineView
	chat       *lineView
	keys       keyMap
	styles     Styles

	width  int
	height int
	err    error
}

// New creates a browser for ref. The call is loaded by Init.
func New(src artifact.Source, ref artifact.CallRef, opts ...Option) Model {
	o := options{
		log:      zap.NewNop(),
		timing:   navigator.DefaultTiming(),
		debounce: navigator.DefaultDebounce,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ti := textinput.New()
	ti.Placeholder = "search transcript, chat, agenda and action items"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.Focus()

	m := Model{
		ref:        ref,
		changes:    make(chan struct{}, 1),
		onSearch:   o.onSearch,
		input:      ti,
		help:       help.New(),
		results:    newLineView(8),
		transcript: newLineView(10),
		chat:       newLineView(10),
		keys:       defaultKeyMap(),
		styles:     DefaultStyles(),
	}

	changes := m.changes
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	m.player = navigator.NewClockPlayer(nil)
	m.page = navigator.NewPage(src, m.player,
		navigator.WithPageLogger(o.log),
		navigator.WithPageTiming(o.timing),
		navigator.WithSearchDebounce(o.debounce),
		navigator.WithViewport(navigator.PaneTranscript, m.transcript),
		navigator.WithViewport(navigator.PaneChat, m.chat),
		navigator.WithResultScroller(m.results),
		navigator.WithPageChangeListener(notify),
	)
	m.player.SetStateListener(m.page.OnPlayerStateChange)
	m.page.OnPlayerReady()
	return m
}

// Page exposes the navigation controller.
func (m Model) Page() *navigator.Page { return m.page }

// Player exposes the replay clock.
func (m Model) Player() *navigator.ClockPlayer { return m.player }

// Init loads the call and starts the redraw loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.open(), m.waitForChange(), tick())
}

func (m Model) open() tea.Cmd {
	page, ref := m.page, m.ref
	return func() tea.Msg {
		c, err := page.Open(context.Background(), ref)
		return openedMsg{call: c, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case openedMsg:
		if errors.Is(msg.err, navigator.ErrStale) {
			return m, nil
		}
		m.err = msg.err
		m.call = msg.call
		return m, nil

	case changedMsg:
		return m, m.waitForChange()

	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.page.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Filter):
		if s != nil {
			s.SetFilter(s.Filter().Next())
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if s != nil {
			s.OnKeyDown(navigator.KeyArrowUp)
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if s != nil {
			s.OnKeyDown(navigator.KeyArrowDown)
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if s != nil {
			m.logSearch(s)
			if s.OnKeyDown(navigator.KeyEnter) {
				m.input.SetValue("")
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if s != nil {
			s.OnKeyDown(navigator.KeyEscape)
		}
		m.input.SetValue("")
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		if m.player.Playing() {
			m.player.PauseVideo()
		} else {
			m.player.PlayVideo()
		}
		return m, nil

	case key.Matches(msg, m.keys.Resync):
		if m.call != nil {
			m.call.Sync().OnResync()
		}
		return m, nil

	case key.Matches(msg, m.keys.TranscriptUp, m.keys.TranscriptDown):
		m.manualScroll(navigator.PaneTranscript, m.transcript, key.Matches(msg, m.keys.TranscriptUp))
		return m, nil

	case key.Matches(msg, m.keys.ChatUp, m.keys.ChatDown):
		m.manualScroll(navigator.PaneChat, m.chat, key.Matches(msg, m.keys.ChatUp))
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before && s != nil {
		s.OnQueryChange(v)
	}
	return m, cmd
}

func (m Model) manualScroll(p navigator.Pane, v *lineView, up bool) {
	step := v.Height() / 2
	if up {
		step = -step
	}
	v.Scroll(step)
	if m.call != nil {
		m.call.Sync().OnManualScroll(p)
	}
}

func (m Model) logSearch(s *navigator.Session) {
	if m.onSearch == nil || s.State() != navigator.StateResultsShown {
		return
	}
	n := len(s.Results())
	if n == 0 {
		return
	}
	m.onSearch(model.QueryLogEntry{
		SessionID:   s.ID(),
		CallKey:     m.ref.Key(),
		Query:       s.Query(),
		Filter:      string(s.Filter()),
		ResultCount: n,
	})
}

func (m Model) session() *navigator.Session {
	if m.call == nil {
		return nil
	}
	return m.call.Session()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.input.Width = w - 4
	m.help.Width = w

	// header, input, results, panes, footer
	free := h - 6
	resultRows := free / 3
	if resultRows < 3 {
		resultRows = 3
	}
	m.results.SetHeight(resultRows)
	paneRows := free - resultRows - 2
	m.transcript.SetHeight(paneRows)
	m.chat.SetHeight(paneRows)
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteByte('\n')
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("load failed: " + m.err.Error()))
		b.WriteByte('\n')
	}
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.resultsView())
	b.WriteByte('\n')
	b.WriteString(m.panesView())
	b.WriteByte('\n')
	b.WriteString(m.help.ShortHelpView(m.keys.shortHelp()))
	return b.String()
}

func (m Model) headerView() string {
	parts := []string{m.styles.Title.Render("callsearch"), m.ref.String()}
	if s := m.session(); s != nil {
		parts = append(parts, m.styles.Muted.Render("filter: "+string(s.Filter())))
	}
	state := "paused"
	if m.player.Playing() {
		state = "playing"
	}
	parts = append(parts, m.styles.Muted.Render(fmt.Sprintf("%s %s", timestamp.Format(m.player.CurrentTime()), state)))
	if m.call != nil {
		if link := m.call.DeepLink(); link != "" {
			parts = append(parts, m.styles.Muted.Render(link))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) resultsView() string {
	s := m.session()
	if s == nil {
		return m.styles.Muted.Render("loading " + m.ref.Key() + "...")
	}

	switch s.State() {
	case navigator.StateIdle, navigator.StateClosed:
		return m.styles.Help.Render("type to search; enter jumps to the selected moment")
	case navigator.StateQuerying:
		return m.styles.Muted.Render("searching...")
	}

	results := s.Results()
	if len(results) == 0 {
		return m.styles.Muted.Render("no matches")
	}

	m.results.SetCount(len(results))
	start, end := m.results.Window()
	selected := s.Selected()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := m.resultLine(results[i])
		if i == selected {
			line = m.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) resultLine(r model.SearchResult) string {
	text := r.Text
	if r.Speaker != "" {
		text = r.Speaker + ": " + text
	}
	width := m.width - 26
	if width < 20 {
		width = 60
	}
	return fmt.Sprintf("%s %-8s %s", m.styles.Badge(r.Type), timestamp.StripFraction(r.Timestamp), truncate(text, width))
}

func (m Model) panesView() string {
	if m.call == nil {
		return ""
	}
	paneWidth := m.width/2 - 4
	if paneWidth < 20 {
		paneWidth = 40
	}

	engine, vs := m.call.Engine(), m.call.Sync()

	var rows []string
	for _, e := range engine.Transcript() {
		rows = append(rows, paneLine(e.Timestamp, e.Speaker, e.Text))
	}
	left := m.paneView("transcript", rows, m.transcript, vs.Current(navigator.PaneTranscript), vs.Suppressed(navigator.PaneTranscript), paneWidth)

	rows = rows[:0]
	for _, c := range engine.Chat() {
		rows = append(rows, paneLine(c.Timestamp, c.Speaker, c.Message))
	}
	right := m.paneView("chat", rows, m.chat, vs.Current(navigator.PaneChat), vs.Suppressed(navigator.PaneChat), paneWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) paneView(title string, rows []string, v *lineView, current int, paused bool, width int) string {
	if paused {
		title += " (paused)"
	}
	v.SetCount(len(rows))
	start, end := v.Window()

	lines := []string{m.styles.Title.Render(title)}
	for i := start; i < end; i++ {
		line := truncate(rows[i], width)
		if i == current {
			line = m.styles.Current.Render(line)
		}
		lines = append(lines, line)
	}
	if len(rows) == 0 {
		lines = append(lines, m.styles.Muted.Render("none"))
	}
	return m.styles.Pane.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func paneLine(ts, speaker, text string) string {
	return fmt.Sprintf("[%s] %s: %s", timestamp.StripFraction(ts), speaker, text)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
