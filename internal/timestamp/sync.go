package timestamp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SyncConfig pairs the transcript clock with the video clock. Either field may be
// empty, in which case the mapping is the identity.
type SyncConfig struct {
	TranscriptStartTime string `json:"transcriptStartTime"`
	VideoStartTime      string `json:"videoStartTime"`
}

// Enabled reports whether both reference timestamps are present.
func (c SyncConfig) Enabled() bool {
	return c.TranscriptStartTime != "" && c.VideoStartTime != ""
}

// Offset is transcriptStart - videoStart, or 0 when sync is not configured.
func (c SyncConfig) Offset() float64 {
	if !c.Enabled() {
		return 0
	}
	return Parse(c.TranscriptStartTime) - Parse(c.VideoStartTime)
}

// Adjust converts a transcript timestamp into video seconds.
func (c SyncConfig) Adjust(ts string) float64 {
	return Parse(ts) - c.Offset()
}

// ToTranscript converts video seconds back onto the transcript clock.
func (c SyncConfig) ToTranscript(videoSeconds float64) float64 {
	return videoSeconds + c.Offset()
}

// Adjust converts a transcript timestamp into video seconds under cfg.
func Adjust(ts string, cfg SyncConfig) float64 {
	return cfg.Adjust(ts)
}

// DeepLink builds the shareable "#t=<seconds>" fragment for a video position.
func DeepLink(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	return fmt.Sprintf("#t=%d", int64(math.Trunc(seconds)))
}

// ParseDeepLink reads "#t=123", "t=123" or "#t=00:02:03".
func ParseDeepLink(fragment string) (float64, bool) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	value, ok := strings.CutPrefix(fragment, "t=")
	if !ok || value == "" {
		return 0, false
	}
	if strings.Contains(value, ":") {
		if strings.Count(value, ":") != 2 {
			return 0, false
		}
		return Parse(value), true
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
