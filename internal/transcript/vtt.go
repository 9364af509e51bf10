package transcript

import (
	"regexp"
	"strings"

	"callsearch/internal/model"
)

// DefaultSpeaker is used for cues without a "Name:" prefix.
const DefaultSpeaker = "Unknown"

var (
	cueTimestamp = regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d{3}`)
	cueSpeaker   = regexp.MustCompile(`^([^:]+):\s*(.*)$`)
)

// ParseVTT converts a WebVTT transcript into entries in file order.
//
// A "-->" timing line opens a cue; its first HH:MM:SS.mmm becomes the entry
// timestamp. The next non-empty line is the payload, split into speaker and
// text on the first colon. Further payload lines of the same cue are appended
// to the text. Cues without a timestamp or without text are dropped.
func ParseVTT(vtt string) []model.TranscriptEntry {
	var (
		entries []model.TranscriptEntry
		ts      string // timestamp of the open cue, "" when none
		speaker string
		inCue   bool // an entry has been emitted for the current cue block
	)

	for i, raw := range splitLines(vtt) {
		line := strings.TrimSpace(raw)
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" {
			inCue = false
			continue
		}
		if i == 0 && strings.HasPrefix(line, "WEBVTT") {
			continue
		}
		if strings.Contains(line, "-->") {
			ts = cueTimestamp.FindString(line)
			speaker = ""
			inCue = false
			continue
		}
		if isDigitOnly(line) {
			continue
		}

		if inCue {
			last := &entries[len(entries)-1]
			last.Text += " " + line
			continue
		}
		if ts == "" {
			// Text with no open cue.
			continue
		}

		text := line
		if m := cueSpeaker.FindStringSubmatch(line); m != nil {
			speaker = strings.TrimSpace(m[1])
			text = strings.TrimSpace(m[2])
		}
		if text == "" {
			// "Name:" alone; the text may follow on the next line.
			continue
		}
		if speaker == "" {
			speaker = DefaultSpeaker
		}

		entries = append(entries, model.TranscriptEntry{
			Timestamp: ts,
			Speaker:   speaker,
			Text:      text,
		})
		ts, speaker = "", ""
		inCue = true
	}

	return entries
}
