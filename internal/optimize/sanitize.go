package optimize

import "strings"

const (
	sentinelOpen  = "<optimized>"
	sentinelClose = "</optimized>"
)

var preamblePhrases = []string{
	"here is the improved prompt",
	"here is the optimized prompt",
	"here is your improved prompt",
	"here's the improved prompt",
	"here is",
	"here's",
	"sure,",
	"certainly,",
	"of course,",
}

// Sanitize turns a raw model response into clean prompt text. It extracts the
// text between the sentinel tags when present, otherwise strips code-fence
// wrapping, otherwise strips known preamble phrases. Sanitize is idempotent.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)

	if i := strings.Index(s, sentinelOpen); i >= 0 {
		s = s[i+len(sentinelOpen):]
		if j := strings.Index(s, sentinelClose); j >= 0 {
			s = s[:j]
		}
		s = strings.TrimSpace(s)
	}

	for {
		next := stripFence(stripPreamble(s))
		if next == s {
			return s
		}
		s = next
	}
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := s
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		body = s[i+1:]
	} else {
		body = strings.TrimPrefix(s, "```")
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")

	return strings.TrimSpace(body)
}

func stripPreamble(s string) string {
	lower := strings.ToLower(s)
	for _, phrase := range preamblePhrases {
		if !strings.HasPrefix(lower, phrase) {
			continue
		}

		rest := s[len(phrase):]
		// A preamble usually ends at the first colon or line break.
		if i := strings.IndexAny(rest, ":\n"); i >= 0 && i < 80 {
			rest = rest[i+1:]
		}
		return strings.TrimSpace(rest)
	}
	return s
}

// normalizeText is the uniqueness key for a generated variant: lowercased
// with all whitespace runs collapsed to single spaces.
func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
