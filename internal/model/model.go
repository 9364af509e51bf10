// Package model defines the domain types shared across the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ResultType identifies which call artifact a search result came from.
type ResultType string

const (
	TypeTranscript ResultType = "transcript"
	TypeChat       ResultType = "chat"
	TypeAgenda     ResultType = "agenda"
	TypeAction     ResultType = "action"
)

// Filter restricts a search to one result type, or none when FilterAll.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterTranscript Filter = Filter(TypeTranscript)
	FilterChat       Filter = Filter(TypeChat)
	FilterAgenda     Filter = Filter(TypeAgenda)
	FilterAction     Filter = Filter(TypeAction)
)

// Filters lists every filter in the order the UI cycles through them.
var Filters = []Filter{FilterAll, FilterTranscript, FilterChat, FilterAgenda, FilterAction}

// ParseFilter accepts a filter name, defaulting "" to FilterAll.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (want one of all, transcript, chat, agenda, action)", s)
}

// Allows reports whether results of type t pass the filter.
func (f Filter) Allows(t ResultType) bool {
	return f == FilterAll || f == "" || string(f) == string(t)
}

// Next returns the filter after f, wrapping around.
func (f Filter) Next() Filter {
	for i, cur := range Filters {
		if cur == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// TranscriptEntry is one WebVTT cue.
type TranscriptEntry struct {
	Timestamp string
	Speaker   string
	Text      string
}

// ChatMessage is one line of a tab-delimited chat export, with replies folded in.
type ChatMessage struct {
	Timestamp string
	Speaker   string
	Message   string
}

// AgendaItem is a highlight or a titled agenda entry.
type AgendaItem struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Highlight string `json:"highlight,omitempty"`
	Section   string `json:"-"`
	// Decision marks items that record a decision rather than discussion.
	Decision bool `json:"-"`
}

// Text returns the searchable body of the item.
func (a AgendaItem) Text() string {
	if a.Highlight != "" {
		return a.Highlight
	}
	if a.Summary == "" {
		return a.Title
	}
	if a.Title == "" {
		return a.Summary
	}
	return a.Title + ": " + a.Summary
}

// ActionItem is a follow-up recorded on a call.
type ActionItem struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Owner     string `json:"owner"`
}

// Decision is a resolution recorded on a call.
type Decision struct {
	Timestamp string `json:"timestamp"`
	Decision  string `json:"decision"`
}

// Target is a dated goal recorded on a call.
type Target struct {
	Timestamp string `json:"timestamp"`
	Target    string `json:"target"`
}

// SearchResult is the unified record produced by the call search engine.
type SearchResult struct {
	Type      ResultType
	Timestamp string
	Speaker   string
	Text      string
	Context   string
	// MatchScore is non-negative; higher is more relevant.
	MatchScore int
	// OriginalIndex is the position inside the result's own filtered source.
	OriginalIndex int
	// Fields names the record fields the query matched.
	Fields []string
}

// CallSummary is a cached call as listed by the store.
type CallSummary struct {
	Key       string
	Type      string
	Date      string
	Number    string
	Artifacts int
}

// QueryLogEntry records one search that produced results.
type QueryLogEntry struct {
	SessionID   string
	CallKey     string
	Query       string
	Filter      string
	ResultCount int
	LoggedAt    time.Time
}
