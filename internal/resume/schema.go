package resume

// Topic is one stage of the resume conversation
type Topic string

const (
	TopicJobInfo    Topic = "job_info"
	TopicExperience Topic = "experience"
	TopicProjects   Topic = "projects"
	TopicSkills     Topic = "skills"
	TopicSummary    Topic = "summary"
)

// Step bounds. Step 1 collects basic info, steps 2-6 are topics, step 7 is the review.
const (
	StepBasicInfo  = 1
	StepFirstTopic = 2
	StepReview     = 7
)

var topicOrder = []Topic{TopicJobInfo, TopicExperience, TopicProjects, TopicSkills, TopicSummary}

// Topics returns the fixed traversal order
func Topics() []Topic {
	out := make([]Topic, len(topicOrder))
	copy(out, topicOrder)
	return out
}

// Valid reports whether t is a known topic
func (t Topic) Valid() bool {
	return t.Step() != 0
}

// Step returns the step number that hosts the topic, or 0 for an unknown topic
func (t Topic) Step() int {
	for i, topic := range topicOrder {
		if topic == t {
			return i + 2
		}
	}
	return 0
}

// TopicForStep returns the topic hosted by step, if any
func TopicForStep(step int) (Topic, bool) {
	i := step - 2
	if i < 0 || i >= len(topicOrder) {
		return "", false
	}
	return topicOrder[i], true
}

// Field is one named piece of information the conversation aims to extract
type Field struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FieldSchema lists, per topic, the fields that must eventually be known
type FieldSchema map[Topic][]Field

// Field names referenced outside the schema table
const (
	FieldJobTitle = "지원 직무"
)

// DefaultSchema returns the built-in field table
func DefaultSchema() FieldSchema {
	return FieldSchema{
		TopicJobInfo: {
			{FieldJobTitle, "지원하시는 직무를 명확하게 파악"},
			{"관심 기술 분야", "관심 있는 기술 분야 파악"},
			{"주로 다룬 기술", "주요 기술 스택 파악"},
		},
		TopicExperience: {
			{"회사명", "회사명 파악"},
			{"직무", "담당 직무 파악"},
			{"근무 기간", "근무 기간 파악"},
			{"사용 기술", "사용한 기술 스택 파악"},
			{"주요 업무", "주요 업무 내용 파악"},
			{"성과/결과", "주요 성과나 결과 파악"},
		},
		TopicProjects: {
			{"프로젝트명", "프로젝트명 파악"},
			{"기간", "프로젝트 기간 파악"},
			{"역할", "프로젝트에서의 역할 파악"},
			{"사용 기술", "사용한 기술 스택 파악"},
			{"성과/결과", "프로젝트 성과나 결과 파악"},
		},
		TopicSkills: {
			{"언어", "프로그래밍 언어 숙련도 파악"},
			{"프레임워크", "프레임워크 숙련도 파악"},
			{"DB/인프라", "데이터베이스/인프라 숙련도 파악"},
			{"기타 도구", "기타 개발 도구 숙련도 파악"},
		},
		TopicSummary: {
			{"간단한 자기소개", "자기소개 내용 파악"},
			{"일하는 스타일", "업무 스타일 파악"},
			{"커리어 방향 or 포부", "커리어 목표 파악"},
		},
	}
}

// Lookup returns the field with the given name in topic
func (s FieldSchema) Lookup(topic Topic, name string) (Field, bool) {
	for _, f := range s[topic] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CollectedFlags records, per topic and field, whether the field is satisfied.
// A flag once set is never cleared within a session.
type CollectedFlags map[Topic]map[string]bool

// NewCollectedFlags returns all-false flags for every field in schema
func NewCollectedFlags(schema FieldSchema) CollectedFlags {
	flags := make(CollectedFlags, len(schema))
	for topic, fields := range schema {
		flags[topic] = make(map[string]bool, len(fields))
		for _, f := range fields {
			flags[topic][f.Name] = false
		}
	}
	return flags
}

// Mark sets a field satisfied
func (f CollectedFlags) Mark(topic Topic, field string) {
	if f[topic] == nil {
		f[topic] = make(map[string]bool)
	}
	f[topic][field] = true
}

// Satisfied reports whether a field has been marked
func (f CollectedFlags) Satisfied(topic Topic, field string) bool {
	return f[topic][field]
}

// Complete reports whether every schema field of topic is satisfied
func (f CollectedFlags) Complete(schema FieldSchema, topic Topic) bool {
	return len(f.Pending(schema, topic)) == 0
}

// Pending returns the unsatisfied fields of topic in schema order
func (f CollectedFlags) Pending(schema FieldSchema, topic Topic) []Field {
	var pending []Field
	for _, field := range schema[topic] {
		if !f.Satisfied(topic, field.Name) {
			pending = append(pending, field)
		}
	}
	return pending
}

// Count returns how many fields of topic are satisfied
func (f CollectedFlags) Count(topic Topic) int {
	n := 0
	for _, ok := range f[topic] {
		if ok {
			n++
		}
	}
	return n
}
