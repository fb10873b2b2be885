package adapter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// LinkClassifier decides whether an anchor on a careers page points at a job.
type LinkClassifier func(text, href string) bool

const minJobTextRunes = 5

var (
	junkLinkRegex = regexp.MustCompile(`(?i)privacy|terms|cookie|log ?in|sign ?in|language|contact|about`)
	jobHrefRegex  = regexp.MustCompile(`(?i)job|career|apply`)
)

// IsJobLink is the default LinkClassifier. Junk text is rejected first; then the
// href must mention a job, career or apply path and the text must be at least
// five characters.
func IsJobLink(text, href string) bool {
	text = strings.TrimSpace(text)
	if junkLinkRegex.MatchString(text) {
		return false
	}
	if !jobHrefRegex.MatchString(href) {
		return false
	}
	return utf8.RuneCountInString(text) >= minJobTextRunes
}
