// Package artifact fetches the raw files published for each call and decodes
// them into a Bundle.
package artifact

import (
	"fmt"
	"strings"
	"time"

	"callsearch/internal/model"
)

// Artifact file names.
const (
	FileTranscript = "transcript.vtt"
	FileChat       = "chat.txt"
	FileConfig     = "config.json"
	FileAgenda     = "agenda.json"
	FileTldr       = "tldr.json"
	FileSummary    = "summary.json"
)

// Files lists every artifact a call may have, in load order.
var Files = []string{FileTranscript, FileChat, FileConfig, FileAgenda, FileTldr, FileSummary}

// IsArtifact reports whether name is one of Files.
func IsArtifact(name string) bool {
	for _, f := range Files {
		if f == name {
			return true
		}
	}
	return false
}

// CallRef identifies one call, e.g. acdc/2025-01-30_151.
type CallRef struct {
	Type   string
	Date   string
	Number string
}

// Key returns "{type}/{date}_{number}".
func (r CallRef) Key() string {
	return r.Type + "/" + r.Date + "_" + r.Number
}

func (r CallRef) String() string { return r.Key() }

// ParseCallRef parses a key produced by CallRef.Key.
func ParseCallRef(key string) (CallRef, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	typ, rest, ok := strings.Cut(key, "/")
	if !ok || typ == "" || strings.Contains(rest, "/") {
		return CallRef{}, fmt.Errorf("invalid call %q: want type/date_number", key)
	}
	i := strings.LastIndex(rest, "_")
	if i < 0 {
		return CallRef{}, fmt.Errorf("invalid call %q: missing _number", key)
	}
	ref := CallRef{Type: strings.ToLower(typ), Date: rest[:i], Number: rest[i+1:]}

	if _, err := time.Parse(model.CallDateLayout, ref.Date); err != nil {
		return CallRef{}, fmt.Errorf("invalid call date %q: %w", ref.Date, err)
	}
	if ref.Number == "" || strings.Trim(ref.Number, "0123456789") != "" {
		return CallRef{}, fmt.Errorf("invalid call number %q", ref.Number)
	}
	return ref, nil
}
