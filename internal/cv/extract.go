package cv

import (
	"regexp"
	"strings"
)

type matchMode int

const (
	firstMatch matchMode = iota
	allMatches
)

const fragmentSeparator = "; "

type fieldRule struct {
	field   string
	pattern *regexp.Regexp
	mode    matchMode
	set     func(*ExtractedRecord, string)
}

// "." does not cross newlines, so every .* fragment stops at end of line.
var fieldRules = []fieldRule{
	{
		field:   "email",
		pattern: regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`),
		mode:    firstMatch,
		set:     func(r *ExtractedRecord, v string) { r.Email = v },
	},
	{
		field:   "phone",
		pattern: regexp.MustCompile(`\+?\d[\d\s-]{8,}\d`),
		mode:    firstMatch,
		set:     func(r *ExtractedRecord, v string) { r.Phone = v },
	},
	{
		field:   "education",
		pattern: regexp.MustCompile(`(?:B\.Sc\.|M\.Sc\.|B\.Tech|M\.Tech|Ph\.D|University|College).*`),
		mode:    allMatches,
		set:     func(r *ExtractedRecord, v string) { r.Education = v },
	},
	{
		field:   "experience",
		pattern: regexp.MustCompile(`(?i)(?:Experience|Work History|Employment).*`),
		mode:    allMatches,
		set:     func(r *ExtractedRecord, v string) { r.Experience = v },
	},
	{
		field:   "skills",
		pattern: regexp.MustCompile(`(?i)(?:Skills|Technologies|Expertise).*`),
		mode:    allMatches,
		set:     func(r *ExtractedRecord, v string) { r.Skills = v },
	},
}

// Extract pulls the résumé fields out of text. It never fails; fields that
// cannot be found are left empty.
func Extract(text string) ExtractedRecord {
	record := ExtractedRecord{Name: firstLine(text)}
	for _, rule := range fieldRules {
		rule.set(&record, rule.apply(text))
	}
	return record
}

func (r fieldRule) apply(text string) string {
	switch r.mode {
	case firstMatch:
		return r.pattern.FindString(text)
	default:
		return strings.Join(r.pattern.FindAllString(text, -1), fragmentSeparator)
	}
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}
