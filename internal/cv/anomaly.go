package cv

import (
	"regexp"
	"unicode"
)

const (
	MissingEmail      = "Missing email"
	MissingPhone      = "Missing phone"
	MissingEducation  = "Missing education"
	MissingExperience = "Missing experience"
	MissingSkills     = "Missing skills"
	InvalidEmail      = "Invalid email"
	InvalidPhone      = "Invalid phone"
)

const minPhoneDigits = 8

// Looser than the capture pattern in extract.go; keep them separate.
var emailShape = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type anomalyRule struct {
	name  string
	fails func(ExtractedRecord) bool
}

var anomalyRules = []anomalyRule{
	{MissingEmail, func(r ExtractedRecord) bool { return r.Email == "" }},
	{MissingPhone, func(r ExtractedRecord) bool { return r.Phone == "" }},
	{MissingEducation, func(r ExtractedRecord) bool { return r.Education == "" }},
	{MissingExperience, func(r ExtractedRecord) bool { return r.Experience == "" }},
	{MissingSkills, func(r ExtractedRecord) bool { return r.Skills == "" }},
	{InvalidEmail, func(r ExtractedRecord) bool { return r.Email != "" && !emailShape.MatchString(r.Email) }},
	{InvalidPhone, func(r ExtractedRecord) bool { return r.Phone != "" && countDigits(r.Phone) < minPhoneDigits }},
}

// Check evaluates every rule against record in a fixed order and collects the
// names of those that fail.
func Check(record ExtractedRecord) AnomalyReport {
	var anomalies []string
	for _, rule := range anomalyRules {
		if rule.fails(record) {
			anomalies = append(anomalies, rule.name)
		}
	}
	return AnomalyReport{
		Anomalies: anomalies,
		Valid:     len(anomalies) == 0,
	}
}

func countDigits(s string) int {
	n := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			n++
		}
	}
	return n
}
