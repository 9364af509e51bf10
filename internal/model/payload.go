package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PayloadKind discriminates the structured JSON artifacts attached to a call.
type PayloadKind string

const (
	KindAgenda  PayloadKind = "agenda"
	KindTldr    PayloadKind = "tldr"
	KindSummary PayloadKind = "summary"
)

// Payload is one decoded agenda.json, tldr.json or summary.json artifact.
type Payload interface {
	Kind() PayloadKind
}

// AgendaPayload mirrors agenda.json.
type AgendaPayload struct {
	Items       []AgendaItem `json:"agenda"`
	ActionItems []ActionItem `json:"action_items"`
	Decisions   []Decision   `json:"decisions"`
}

func (AgendaPayload) Kind() PayloadKind { return KindAgenda }

// TldrPayload mirrors tldr.json. Highlights keep the section order of the file.
type TldrPayload struct {
	Meeting     string       `json:"meeting"`
	Highlights  Sections     `json:"highlights"`
	ActionItems []ActionItem `json:"action_items"`
	Decisions   []Decision   `json:"decisions"`
	Targets     []Target     `json:"targets"`
}

func (TldrPayload) Kind() PayloadKind { return KindTldr }

// SummaryPayload mirrors summary.json.
type SummaryPayload struct {
	Overview string       `json:"overview"`
	Sections []AgendaItem `json:"sections"`
}

func (SummaryPayload) Kind() PayloadKind { return KindSummary }

// Section is a named group of highlights.
type Section struct {
	Name  string
	Items []AgendaItem
}

// Sections decodes a JSON object of arrays while preserving key order.
type Sections []Section

func (s *Sections) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("highlights: expected object, got %v", tok)
	}

	var out Sections
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)
		var items []AgendaItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("highlights %q: %w", name, err)
		}
		out = append(out, Section{Name: name, Items: items})
	}
	*s = out
	return nil
}

// ParsePayload decodes raw artifact bytes into the payload type named by kind.
func ParsePayload(kind PayloadKind, data []byte) (Payload, error) {
	switch kind {
	case KindAgenda:
		var p AgendaPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal agenda: %w", err)
		}
		return p, nil
	case KindTldr:
		var p TldrPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal tldr: %w", err)
		}
		return p, nil
	case KindSummary:
		var p SummaryPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
}
