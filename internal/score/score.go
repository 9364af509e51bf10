// Package score computes query relevance for call records and EIPs.
//
// Scores are small non-negative integers built from fixed bonuses, so the same
// query and record always produce the same score. A zero score with no exact or
// all-words match means "no match", not "weak match".
package score

import (
	"strings"

	"callsearch/internal/model"
)

// Bonuses applied to call records.
const (
	ExactBonus        = 10 // full query is a substring of the primary text
	AllWordsBonus     = 5  // every query word appears in some searchable field
	PrimaryWordBonus  = 2  // per query word found in the primary text
	IdentityWordBonus = 3  // per query word found in speaker or owner
	DecisionBonus     = 2  // agenda items that record a decision
	ActionBonus       = 5  // every matching action item
)

// Query is a normalized search query.
type Query struct {
	Raw   string
	Lower string
	Words []string
}

// NewQuery trims and lower-cases raw and splits it on whitespace.
func NewQuery(raw string) Query {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return Query{
		Raw:   raw,
		Lower: lower,
		Words: strings.Fields(lower),
	}
}

// Empty reports whether the query has nothing to match.
func (q Query) Empty() bool {
	return len(q.Words) == 0
}

// Match is the outcome of scoring one record.
type Match struct {
	Score    int
	Exact    bool
	AllWords bool
	// Fields lists the record fields that contained the query or a query word.
	Fields []string
}

// Hit reports whether the record belongs in the result list.
func (m Match) Hit() bool {
	return m.Score > 0 || m.Exact || m.AllWords
}

// field is one searchable string of a record.
type field struct {
	name     string
	value    string
	identity bool
}

// fields scores q against a primary text field and an optional identity field.
func fields(q Query, primary, identity field) Match {
	if q.Empty() {
		return Match{}
	}

	text := strings.ToLower(primary.value)
	who := strings.ToLower(identity.value)

	var m Match
	textHit, whoHit := false, false

	if strings.Contains(text, q.Lower) {
		m.Score += ExactBonus
		m.Exact = true
		textHit = true
	}

	all := true
	for _, w := range q.Words {
		inText := strings.Contains(text, w)
		inWho := who != "" && strings.Contains(who, w)
		if inText {
			m.Score += PrimaryWordBonus
			textHit = true
		}
		if inWho {
			m.Score += IdentityWordBonus
			whoHit = true
		}
		if !inText && !inWho {
			all = false
		}
	}
	if all {
		m.Score += AllWordsBonus
		m.AllWords = true
	}

	if textHit {
		m.Fields = append(m.Fields, primary.name)
	}
	if whoHit {
		m.Fields = append(m.Fields, identity.name)
	}
	return m
}

// Transcript scores a transcript entry on its text and speaker.
func Transcript(q Query, e model.TranscriptEntry) Match {
	return fields(q,
		field{name: "text", value: e.Text},
		field{name: "speaker", value: e.Speaker, identity: true},
	)
}

// Chat scores a chat message on its body and speaker.
func Chat(q Query, c model.ChatMessage) Match {
	return fields(q,
		field{name: "message", value: c.Message},
		field{name: "speaker", value: c.Speaker, identity: true},
	)
}

// Agenda scores an agenda item, highlight, decision or target.
func Agenda(q Query, a model.AgendaItem) Match {
	m := fields(q, field{name: "text", value: a.Text()}, field{})
	if a.Decision && m.Hit() {
		m.Score += DecisionBonus
	}
	return m
}

// Action scores an action item on its action text and owner.
func Action(q Query, a model.ActionItem) Match {
	m := fields(q,
		field{name: "action", value: a.Action},
		field{name: "owner", value: a.Owner, identity: true},
	)
	if m.Hit() {
		m.Score += ActionBonus
	}
	return m
}
