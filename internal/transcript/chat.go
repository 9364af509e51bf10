package transcript

import (
	"regexp"
	"strings"

	"callsearch/internal/model"
)

var chatLine = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})\t(.+?)\t(.*)$`)

// reactionPrefixes mark emoji reactions, which carry no chat content.
var reactionPrefixes = []string{
	"Reacted to",
	"Reaccionó a",
	"A réagi à",
	"Hat reagiert auf",
}

// replyPrefixes mark replies whose real body follows on untimestamped lines.
var replyPrefixes = []string{
	"Replying to",
	"Respondiendo a",
	"En réponse à",
	"Antwort auf",
}

// ParseChat converts a tab-delimited "HH:MM:SS\tSpeaker\tText" export into
// messages in file order. Reactions are dropped. A "Replying to" line takes
// its body from the untimestamped lines that follow it, joined with a space;
// with no such lines the placeholder is kept.
func ParseChat(text string) []model.ChatMessage {
	lines := splitLines(text)
	var messages []model.ChatMessage

	for i := 0; i < len(lines); i++ {
		m := chatLine.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		body := strings.TrimSpace(m[3])
		if hasAnyPrefix(body, reactionPrefixes) {
			continue
		}

		if hasAnyPrefix(body, replyPrefixes) {
			var folded []string
			j := i + 1
			for ; j < len(lines) && !chatLine.MatchString(lines[j]); j++ {
				if part := strings.TrimSpace(lines[j]); part != "" {
					folded = append(folded, part)
				}
			}
			if len(folded) > 0 {
				body = strings.Join(folded, " ")
			}
			i = j - 1
		}

		if body == "" {
			continue
		}

		messages = append(messages, model.ChatMessage{
			Timestamp: m[1],
			Speaker:   strings.TrimSpace(m[2]),
			Message:   body,
		})
	}

	return messages
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
