package resume

import (
	"fmt"
	"slices"
	"strings"
)

// ContinuationPrefix joins later turns of a topic onto its last entry
const ContinuationPrefix = "\n추가 정보: "

// JobInfo holds the distinguished title plus raw answers in arrival order
type JobInfo struct {
	Title   string   `json:"title"`
	Answers []string `json:"answers"`
}

// Answer returns answer_n, or "" when absent
func (j JobInfo) Answer(n int) string {
	if n < 0 || n >= len(j.Answers) {
		return ""
	}
	return j.Answers[n]
}

// Fields returns the flat view: "title" plus "answer_N" keys
func (j JobInfo) Fields() map[string]string {
	fields := make(map[string]string, len(j.Answers)+1)
	if j.Title != "" {
		fields["title"] = j.Title
	}
	for i, a := range j.Answers {
		fields[fmt.Sprintf("answer_%d", i)] = a
	}
	return fields
}

// Data is the resume record built during a session
type Data struct {
	BasicInfo  BasicInfo `json:"basic_info"`
	JobInfo    JobInfo   `json:"job_info"`
	Experience []string  `json:"experience"`
	Projects   []string  `json:"projects"`
	Skills     []string  `json:"skills"`
	Summary    []string  `json:"summary"`
}

// Record merges one user answer into the topic's section.
// turn is the number of turns already counted for the topic; it decides whether
// experience and projects open a new entry or continue the last one.
// It reports whether a new entry was created.
func (d *Data) Record(topic Topic, utterance string, turn int) (bool, error) {
	switch topic {
	case TopicJobInfo:
		d.JobInfo.Answers = append(d.JobInfo.Answers, utterance)
		return true, nil
	case TopicExperience:
		return appendOrContinue(&d.Experience, utterance, turn), nil
	case TopicProjects:
		return appendOrContinue(&d.Projects, utterance, turn), nil
	case TopicSkills:
		bullet := "- " + utterance
		if slices.Contains(d.Skills, bullet) {
			return false, nil
		}
		d.Skills = append(d.Skills, bullet)
		return true, nil
	case TopicSummary:
		d.Summary = append(d.Summary, utterance)
		return true, nil
	default:
		return false, fmt.Errorf("unknown topic: %q", topic)
	}
}

func appendOrContinue(entries *[]string, utterance string, turn int) bool {
	if turn == 0 || len(*entries) == 0 {
		*entries = append(*entries, utterance)
		return true
	}
	last := len(*entries) - 1
	(*entries)[last] += ContinuationPrefix + utterance
	return false
}

// SetTitleIfEmpty records a job title unless one is already known
func (d *Data) SetTitleIfEmpty(title string) {
	if strings.TrimSpace(d.JobInfo.Title) == "" {
		d.JobInfo.Title = strings.TrimSpace(title)
	}
}

// EntryCount returns the number of stored entries for a list topic
func (d *Data) EntryCount(topic Topic) int {
	switch topic {
	case TopicJobInfo:
		return len(d.JobInfo.Answers)
	case TopicExperience:
		return len(d.Experience)
	case TopicProjects:
		return len(d.Projects)
	case TopicSkills:
		return len(d.Skills)
	case TopicSummary:
		return len(d.Summary)
	}
	return 0
}
