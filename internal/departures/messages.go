package departures

import (
	"strings"

	"github.com/mobil-koeln/moko-board/internal/models"
)

const messageSeparator = " | "

var entities = []struct {
	name string
	repl string
}{
	{"&quot;", `"`},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
}

// StripMarkup removes anything between '<' and '>' and decodes the four
// entities the feed uses. Decoded brackets are kept as text.
func StripMarkup(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inTag := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case inTag:
		case c == '&':
			decoded := false
			for _, e := range entities {
				if strings.HasPrefix(s[i:], e.name) {
					sb.WriteString(e.repl)
					i += len(e.name) - 1
					decoded = true
					break
				}
			}
			if !decoded {
				sb.WriteByte(c)
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// assembleMessages builds the single system message shown on the board
func assembleMessages(msgs []models.MessageResponse) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if !m.HasText {
			continue
		}
		text := StripMarkup(m.Text)
		text = strings.TrimPrefix(text, "\n")
		parts = append(parts, text)
	}
	return strings.Join(parts, messageSeparator)
}
