package schedule

import (
	"regexp"
	"strings"
)

// TravelKeywords mark a free-form message as a travel query, in priority order.
var TravelKeywords = []string{"trip to", "travel to", "visit", "vacation in", "planning to go to"}

// destinationPattern captures a place name up to the next stop word or punctuation,
// so multi-word names such as "New York" survive.
var destinationPattern = regexp.MustCompile(`^\s*([\p{L}][\p{L} .'-]*?)(?:\s+(?:from|on|for|in|next|this|to|until|through|starting|during|with|and|at|by|around|tomorrow|today|tonight|soon|sometime|please)\b|\s*[,.!?;:]|\s*$)`)

// IsTravelQuery reports whether message mentions any travel keyword.
func IsTravelQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range TravelKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractDestination returns the title-cased destination following the first
// travel keyword found in message.
func ExtractDestination(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, kw := range TravelKeywords {
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}
		rest := lower[idx+len(kw):]
		m := destinationPattern.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		dest := strings.TrimSpace(strings.TrimRight(m[1], ".'-"))
		dest = strings.TrimPrefix(dest, "the ")
		if dest == "" {
			continue
		}
		return TitleCase(dest), true
	}
	return "", false
}
