// Package transcript parses call transcripts (WebVTT) and chat exports
// (tab-delimited) into ordered entries. Parsing is best-effort: malformed
// records are dropped, never reported.
package transcript

import (
	"bufio"
	"strings"
)

// maxLineBytes bounds a single artifact line; chat pastes can be long.
const maxLineBytes = 10 * 1024 * 1024

// splitLines returns the lines of content with any trailing '\r' removed.
func splitLines(content string) []string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	// A line longer than maxLineBytes ends the scan; everything before it is kept.
	return lines
}

// isDigitOnly reports whether s is a non-empty run of ASCII digits.
func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
