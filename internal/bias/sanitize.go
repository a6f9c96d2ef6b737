package bias

import (
	"regexp"
	"strings"
)

// Redaction placeholders.
const (
	RedactedName       = "[REDACTED_NAME]"
	RedactedCompany    = "[COMPANY]"
	RedactedUniversity = "[UNIVERSITY]"
	RedactedAge        = "[AGE_REDACTED]"
)

// DefaultCompanies and DefaultUniversities are redacted by NewSanitizer.
var (
	DefaultCompanies    = []string{"Google", "Meta", "Amazon", "Apple", "Microsoft", "Netflix", "FAANG"}
	DefaultUniversities = []string{"MIT", "Stanford", "Harvard", "Berkeley", "Carnegie Mellon", "Caltech", "Oxford", "Cambridge"}
)

// Sanitizer strips identifying details from a transcript so the scorer sees
// only the content of the answer.
type Sanitizer struct {
	name       *regexp.Regexp
	company    *regexp.Regexp
	university *regexp.Regexp
	age        *regexp.Regexp
}

// NewSanitizer builds a sanitizer for the default company and university lists.
func NewSanitizer() *Sanitizer {
	return NewSanitizerWith(DefaultCompanies, DefaultUniversities)
}

// NewSanitizerWith builds a sanitizer for custom lists.
func NewSanitizerWith(companies, universities []string) *Sanitizer {
	return &Sanitizer{
		// only the introduction is case-insensitive; the name itself must be capitalised
		name:       regexp.MustCompile(`\b(?i:my name is|i'm|i am)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\b`),
		company:    regexp.MustCompile(`(?i)\bat\s+(?:` + alternation(companies) + `)\b`),
		university: regexp.MustCompile(`(?i)\b(?:` + alternation(universities) + `)\b`),
		age:        regexp.MustCompile(`(?i)\b\d{1,2}\s*years?\s*old\b`),
	}
}

// Sanitize returns text with names, employers, universities and ages redacted.
func (s *Sanitizer) Sanitize(text string) string {
	out := s.name.ReplaceAllLiteralString(text, RedactedName)
	out = s.company.ReplaceAllLiteralString(out, "at "+RedactedCompany)
	out = s.university.ReplaceAllLiteralString(out, RedactedUniversity)
	return s.age.ReplaceAllLiteralString(out, RedactedAge)
}

func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		// matches nothing
		return `[^\s\S]`
	}
	return strings.Join(quoted, "|")
}
