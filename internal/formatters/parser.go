package formatters

import (
	"fmt"
	"strings"

	"resumechat/internal/errors"
	"resumechat/internal/resume"
)

var sectionMarkers = []string{
	markerPersonal, markerJob, markerSummary, markerExperience, markerProjects, markerSkills,
}

// ParseText recovers resume data from the canonical text document by its section markers.
// Placeholder values parse back as empty.
func ParseText(text string) (resume.Data, error) {
	sections := splitSections(text)
	if _, ok := sections[markerPersonal]; !ok {
		return resume.Data{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"not a resume document: missing "+markerPersonal+" section", nil)
	}

	var d resume.Data

	for _, line := range sections[markerPersonal] {
		switch {
		case strings.HasPrefix(line, labelName):
			d.BasicInfo.Name = value(line, labelName, placeholderNotEntered)
		case strings.HasPrefix(line, labelEmail):
			d.BasicInfo.Email = value(line, labelEmail, placeholderNotEntered)
		case strings.HasPrefix(line, labelPhone):
			d.BasicInfo.Phone = value(line, labelPhone, placeholderNotEntered)
		case strings.HasPrefix(line, labelPortfolio):
			d.BasicInfo.Portfolio = value(line, labelPortfolio, placeholderNone)
		}
	}

	var tech, exp string
	for _, line := range sections[markerJob] {
		switch {
		case strings.HasPrefix(line, labelTitle):
			d.JobInfo.Title = value(line, labelTitle, placeholderNotEntered)
		case strings.HasPrefix(line, labelTech):
			tech = strings.TrimPrefix(line, labelTech)
		case strings.HasPrefix(line, labelExp):
			exp = strings.TrimPrefix(line, labelExp)
		}
	}
	switch {
	case exp != "":
		d.JobInfo.Answers = []string{tech, exp}
	case tech != "":
		d.JobInfo.Answers = []string{tech}
	}

	for _, line := range sections[markerSummary] {
		if line != emptySummary {
			d.Summary = append(d.Summary, line)
		}
	}

	d.Experience = parseNumbered(sections[markerExperience], emptyExperience)
	d.Projects = parseNumbered(sections[markerProjects], emptyProjects)
	d.Skills = parseBullets(sections[markerSkills], emptySkills)

	return d, nil
}

// splitSections groups lines under their marker, dropping blank lines at either end
func splitSections(text string) map[string][]string {
	sections := make(map[string][]string)
	current := ""
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if isMarker(line) {
			current = line
			sections[current] = []string{}
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	for marker, lines := range sections {
		sections[marker] = joinContinuations(trimBlank(lines))
	}
	return sections
}

// joinContinuations folds indented lines into the line above them
func joinContinuations(lines []string) []string {
	joined := make([]string, 0, len(lines))
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, continuationIndent); ok && len(joined) > 0 {
			joined[len(joined)-1] += "\n" + rest
			continue
		}
		joined = append(joined, line)
	}
	return joined
}

func isMarker(line string) bool {
	for _, m := range sectionMarkers {
		if line == m {
			return true
		}
	}
	return false
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func value(line, label, placeholder string) string {
	v := strings.TrimPrefix(line, label)
	if v == placeholder {
		return ""
	}
	return v
}

// parseNumbered reads "N. entry" items; lines without the next number continue the previous item
func parseNumbered(lines []string, placeholder string) []string {
	var entries []string
	next := 1
	for _, line := range lines {
		prefix := fmt.Sprintf("%d. ", next)
		switch {
		case strings.HasPrefix(line, prefix):
			entries = append(entries, strings.TrimPrefix(line, prefix))
			next++
		case line == placeholder && len(entries) == 0:
		case len(entries) > 0:
			entries[len(entries)-1] += "\n" + line
		default:
			entries = append(entries, line)
			next++
		}
	}
	return entries
}

// parseBullets reads "- item" lines; other lines continue the previous item
func parseBullets(lines []string, placeholder string) []string {
	var entries []string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "- "):
			entries = append(entries, line)
		case line == placeholder && len(entries) == 0:
		case len(entries) > 0:
			entries[len(entries)-1] += "\n" + line
		default:
			entries = append(entries, line)
		}
	}
	return entries
}
