package resume

import (
	"slices"
	"strings"
)

// Missing-field identifiers
const (
	MissingName       = "basic_info.name"
	MissingEmail      = "basic_info.email"
	MissingTitle      = "job_info.title"
	MissingSummary    = "summary"
	MissingExperience = "experience"
	MissingProjects   = "projects"
	MissingSkills     = "skills"
)

var blocking = []string{MissingName, MissingEmail, MissingTitle}

// Validate returns the identifiers of missing fields in a fixed order.
// Required fields come first; the list sections are soft-required.
func Validate(d Data) []string {
	var missing []string
	if strings.TrimSpace(d.BasicInfo.Name) == "" {
		missing = append(missing, MissingName)
	}
	if strings.TrimSpace(d.BasicInfo.Email) == "" {
		missing = append(missing, MissingEmail)
	}
	if strings.TrimSpace(d.JobInfo.Title) == "" {
		missing = append(missing, MissingTitle)
	}
	if len(d.Summary) == 0 {
		missing = append(missing, MissingSummary)
	}
	if len(d.Experience) == 0 {
		missing = append(missing, MissingExperience)
	}
	if len(d.Projects) == 0 {
		missing = append(missing, MissingProjects)
	}
	if len(d.Skills) == 0 {
		missing = append(missing, MissingSkills)
	}
	return missing
}

// Blocking filters ids down to the required subset
func Blocking(ids []string) []string {
	var out []string
	for _, id := range ids {
		if slices.Contains(blocking, id) {
			out = append(out, id)
		}
	}
	return out
}

// MissingAdvisory formats the review-step advisory, or "" when nothing is missing
func MissingAdvisory(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return "다음 항목이 누락되었습니다: " + strings.Join(ids, ", ")
}
