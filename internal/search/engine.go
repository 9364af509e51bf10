// Package search merges transcript, chat, agenda and action records of one
// call into a single ranked result list.
package search

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"callsearch/internal/model"
	"callsearch/internal/score"
	"callsearch/internal/timestamp"
	"callsearch/internal/transcript"
)

// Sources is the raw content of one call. Empty strings and nil payloads mean
// the artifact is absent.
type Sources struct {
	Transcript string
	Chat       string
	Payloads   []model.Payload
}

// Engine searches one call. It is safe for concurrent use.
type Engine struct {
	log     *zap.Logger
	syncCfg func() timestamp.SyncConfig

	mu         sync.Mutex
	src        Sources
	transcript memo[model.TranscriptEntry]
	chat       memo[model.ChatMessage]
}

// memo holds the parse of the most recent content string.
type memo[T any] struct {
	content string
	parsed  bool
	records []T
}

func (m *memo[T]) get(content string, parse func(string) []T) []T {
	if !m.parsed || m.content != content {
		m.content = content
		m.records = parse(content)
		m.parsed = true
	}
	return m.records
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an engine over src. syncConfig is consulted on every search so a
// config that arrives late takes effect immediately; it may be nil.
func New(src Sources, syncConfig func() timestamp.SyncConfig, opts ...Option) *Engine {
	e := &Engine{
		log:     zap.NewNop(),
		syncCfg: syncConfig,
		src:     src,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSources replaces the call content. Parses are redone lazily on change.
func (e *Engine) SetSources(src Sources) {
	e.mu.Lock()
	e.src = src
	e.mu.Unlock()
}

func (e *Engine) syncConfig() timestamp.SyncConfig {
	if e.syncCfg == nil {
		return timestamp.SyncConfig{}
	}
	return e.syncCfg()
}

// Search scores every record allowed by filter against query and returns the
// matches ordered by relevance. See Less for the ordering.
func (e *Engine) Search(query string, filter model.Filter) []model.SearchResult {
	q := score.NewQuery(query)
	if q.Empty() {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.callStart()
	var results []model.SearchResult

	if filter.Allows(model.TypeTranscript) {
		for i, entry := range e.transcriptEntries(start) {
			m := score.Transcript(q, entry)
			if !m.Hit() {
				continue
			}
			results = append(results, model.SearchResult{
				Type:          model.TypeTranscript,
				Timestamp:     entry.Timestamp,
				Speaker:       entry.Speaker,
				Text:          entry.Text,
				MatchScore:    m.Score,
				OriginalIndex: i,
				Fields:        m.Fields,
			})
		}
	}

	if filter.Allows(model.TypeChat) {
		for i, msg := range e.chatMessages(start) {
			m := score.Chat(q, msg)
			if !m.Hit() {
				continue
			}
			results = append(results, model.SearchResult{
				Type:          model.TypeChat,
				Timestamp:     msg.Timestamp,
				Speaker:       msg.Speaker,
				Text:          msg.Message,
				MatchScore:    m.Score,
				OriginalIndex: i,
				Fields:        m.Fields,
			})
		}
	}

	agenda, actions := flatten(e.src.Payloads)

	if filter.Allows(model.TypeAgenda) {
		for i, item := range agenda {
			m := score.Agenda(q, item)
			if !m.Hit() {
				continue
			}
			results = append(results, model.SearchResult{
				Type:          model.TypeAgenda,
				Timestamp:     item.Timestamp,
				Text:          item.Text(),
				Context:       item.Section,
				MatchScore:    m.Score,
				OriginalIndex: i,
				Fields:        m.Fields,
			})
		}
	}

	if filter.Allows(model.TypeAction) {
		for i, item := range actions {
			m := score.Action(q, item)
			if !m.Hit() {
				continue
			}
			results = append(results, model.SearchResult{
				Type:          model.TypeAction,
				Timestamp:     item.Timestamp,
				Speaker:       item.Owner,
				Text:          item.Action,
				MatchScore:    m.Score,
				OriginalIndex: i,
				Fields:        m.Fields,
			})
		}
	}

	Sort(results)

	e.log.Debug("search",
		zap.String("query", q.Lower),
		zap.String("filter", string(filter)),
		zap.Int("results", len(results)),
	)
	return results
}

// Context returns up to radius lines on each side of a transcript or chat
// result, including the result's own line. Other result types have no context.
func (e *Engine) Context(r model.SearchResult, radius int) []string {
	if radius < 0 {
		radius = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.callStart()
	var lines []string

	switch r.Type {
	case model.TypeTranscript:
		entries := e.transcriptEntries(start)
		lo, hi := window(r.OriginalIndex, radius, len(entries))
		for _, entry := range entries[lo:hi] {
			lines = append(lines, contextLine(entry.Timestamp, entry.Speaker, entry.Text))
		}
	case model.TypeChat:
		msgs := e.chatMessages(start)
		lo, hi := window(r.OriginalIndex, radius, len(msgs))
		for _, msg := range msgs[lo:hi] {
			lines = append(lines, contextLine(msg.Timestamp, msg.Speaker, msg.Message))
		}
	}
	return lines
}

// Transcript returns the parsed transcript after the call-start cut. The UI
// renders it as the transcript pane.
func (e *Engine) Transcript() []model.TranscriptEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transcriptEntries(e.callStart())
}

// Chat returns the parsed chat after the call-start cut.
func (e *Engine) Chat() []model.ChatMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chatMessages(e.callStart())
}

// callStart is the transcript-clock second before which entries are noise,
// or -1 when no start is configured.
func (e *Engine) callStart() float64 {
	cfg := e.syncConfig()
	if cfg.TranscriptStartTime == "" {
		return -1
	}
	return timestamp.Parse(cfg.TranscriptStartTime)
}

func (e *Engine) transcriptEntries(start float64) []model.TranscriptEntry {
	all := e.transcript.get(e.src.Transcript, transcript.ParseVTT)
	return afterStart(all, start, func(t model.TranscriptEntry) string { return t.Timestamp })
}

func (e *Engine) chatMessages(start float64) []model.ChatMessage {
	all := e.chat.get(e.src.Chat, transcript.ParseChat)
	return afterStart(all, start, func(c model.ChatMessage) string { return c.Timestamp })
}

// afterStart drops records stamped before start. The memoized slice is never
// modified.
func afterStart[T any](records []T, start float64, ts func(T) string) []T {
	if start < 0 {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if timestamp.Parse(ts(r)) >= start {
			out = append(out, r)
		}
	}
	return out
}

func window(i, radius, n int) (int, int) {
	if i < 0 || i >= n {
		return 0, 0
	}
	lo := i - radius
	if lo < 0 {
		lo = 0
	}
	hi := i + radius + 1
	if hi > n {
		hi = n
	}
	return lo, hi
}

func contextLine(ts, speaker, text string) string {
	return fmt.Sprintf("[%s] %s: %s", timestamp.StripFraction(ts), speaker, text)
}

// Sort orders results in place using Less. The sort is stable so equal inputs
// always produce the same order.
func Sort(results []model.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return Less(results[i], results[j])
	})
}

// Less ranks a before b. Scores within one point of each other count as a
// near-tie and are ordered by timestamp, earliest first; otherwise the higher
// score wins.
func Less(a, b model.SearchResult) bool {
	diff := a.MatchScore - b.MatchScore
	if diff >= -1 && diff <= 1 {
		return timestamp.Parse(a.Timestamp) < timestamp.Parse(b.Timestamp)
	}
	return diff > 0
}
