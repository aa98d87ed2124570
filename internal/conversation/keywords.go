package conversation

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"resumechat/internal/errors"
	"resumechat/internal/resume"

	"gopkg.in/yaml.v3"
)

// Placeholders understood in probe questions
const (
	placeholderMatches = "{matches}"
	placeholderTopic   = "{topic}"
)

// ProbeRule phrases a probing question when any of its terms was mentioned.
// With JoinMatches the matched terms, in table order, replace {matches}.
type ProbeRule struct {
	Terms       []string `yaml:"terms"`
	Question    string   `yaml:"question"`
	JoinMatches bool     `yaml:"joinMatches"`
}

// TopicProbes is the ordered rule list for a topic plus its fallback question
type TopicProbes struct {
	Rules    []ProbeRule `yaml:"rules"`
	Fallback string      `yaml:"fallback"`
}

// KeywordTable maps categories to trigger terms for title detection and probing
type KeywordTable struct {
	RoleTitles      []string                     `yaml:"roleTitles"`
	Probes          map[resume.Topic]TopicProbes `yaml:"probes"`
	GenericFallback string                       `yaml:"genericFallback"`
}

var techTerms = []string{"Java", "Python", "JavaScript", "Spring", "Django", "React"}

// DefaultKeywordTable returns the built-in keyword table
func DefaultKeywordTable() *KeywordTable {
	return &KeywordTable{
		RoleTitles: []string{
			"개발자", "프론트엔드", "백엔드", "풀스택", "데브옵스", "엔지니어", "PM", "PO", "기획자",
			"developer", "backend", "frontend", "DevOps", "engineer",
		},
		Probes: map[resume.Topic]TopicProbes{
			resume.TopicJobInfo: {
				Rules: []ProbeRule{
					{Terms: []string{"백엔드", "backend"}, Question: "백엔드 개발자에 대해 더 자세히 이야기해주세요. 주로 어떤 백엔드 기술을 사용해보셨나요? (예: Spring, Django, Node.js 등)"},
					{Terms: []string{"프론트엔드", "frontend"}, Question: "프론트엔드 개발자에 대해 더 자세히 이야기해주세요. 주로 어떤 프레임워크를 사용해보셨나요? (예: React, Vue, Angular 등)"},
					{Terms: []string{"데브옵스", "devops"}, Question: "DevOps 엔지니어에 대해 더 자세히 이야기해주세요. 어떤 클라우드 플랫폼을 사용해보셨나요? (예: AWS, Azure, GCP 등)"},
				},
				Fallback: "해당 직무에 대해 더 자세히 이야기해주세요. 어떤 기술이나 도구를 주로 사용하시나요?",
			},
			resume.TopicExperience: {
				Rules: []ProbeRule{
					{Terms: techTerms, JoinMatches: true, Question: "{matches}를 사용하신 경험이 있으시군요! 이 기술을 활용한 프로젝트에서 어떤 문제를 해결하기 위해 선택하셨나요?"},
				},
				Fallback: "경력에 대해 더 자세히 이야기해주세요. 가장 기억에 남는 프로젝트나 업무는 무엇인가요?",
			},
			resume.TopicProjects: {
				Rules: []ProbeRule{
					{Terms: []string{"웹"}, Question: "웹 프로젝트에 대해 더 자세히 이야기해주세요. 어떤 기술 스택을 사용하셨나요?"},
					{Terms: []string{"모바일"}, Question: "모바일 앱 프로젝트에 대해 더 자세히 이야기해주세요. 어떤 플랫폼을 타겟으로 하셨나요? (iOS/Android)"},
				},
				Fallback: "프로젝트에 대해 더 자세히 이야기해주세요. 프로젝트의 규모나 기간은 어땠나요?",
			},
			resume.TopicSkills: {
				Rules: []ProbeRule{
					{Terms: techTerms, JoinMatches: true, Question: "{matches}에 대해 더 자세히 이야기해주세요. 이 기술을 얼마나 오래 사용해보셨나요?"},
				},
				Fallback: "기술 스택에 대해 더 자세히 이야기해주세요. 각 기술을 얼마나 오래 사용해보셨나요?",
			},
			resume.TopicSummary: {
				Rules: []ProbeRule{
					{Terms: []string{"강점", "특기"}, Question: "강점에 대해 더 자세히 이야기해주세요. 이 강점이 실제 프로젝트에서 어떻게 발휘되었나요?"},
					{Terms: []string{"목표", "계획"}, Question: "커리어 목표에 대해 더 자세히 이야기해주세요. 이 목표를 이루기 위해 어떤 계획을 세우고 계신가요?"},
				},
				Fallback: "자기소개에 대해 더 자세히 이야기해주세요. 어떤 강점이 지원하는 직무에 도움이 될 것 같으신가요?",
			},
		},
		GenericFallback: "더 자세히 알려주실 부분이 있을까요? {topic} 관련해서 추가로 알고 싶습니다.",
	}
}

// LoadKeywordTable reads a YAML keyword table. Sections the file leaves out keep their defaults.
func LoadKeywordTable(path string) (*KeywordTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				"keyword table not found", err).WithContext("path", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			"failed to read keyword table", err).WithContext("path", path)
	}
	return ParseKeywordTable(data)
}

// ParseKeywordTable decodes a YAML keyword table over the defaults
func ParseKeywordTable(data []byte) (*KeywordTable, error) {
	var file KeywordTable
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"invalid keyword table", err)
	}

	table := DefaultKeywordTable()
	if len(file.RoleTitles) > 0 {
		table.RoleTitles = file.RoleTitles
	}
	for topic, probes := range file.Probes {
		if !topic.Valid() {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("unknown topic in keyword table: %q", topic), nil)
		}
		if probes.Fallback == "" {
			probes.Fallback = table.Probes[topic].Fallback
		}
		table.Probes[topic] = probes
	}
	if file.GenericFallback != "" {
		table.GenericFallback = file.GenericFallback
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that every rule can produce a question
func (t *KeywordTable) Validate() error {
	for topic, probes := range t.Probes {
		for i, rule := range probes.Rules {
			if len(rule.Terms) == 0 || strings.TrimSpace(rule.Question) == "" {
				return errors.NewValidationError(errors.ErrCodeInvalidFormat,
					fmt.Sprintf("keyword rule %d of %s needs terms and a question", i, topic), nil)
			}
			if rule.JoinMatches && !strings.Contains(rule.Question, placeholderMatches) {
				return errors.NewValidationError(errors.ErrCodeInvalidFormat,
					fmt.Sprintf("keyword rule %d of %s joins matches but has no %s placeholder", i, topic, placeholderMatches), nil)
			}
		}
	}
	return nil
}

// MatchRole reports whether text names a role title
func (t *KeywordTable) MatchRole(text string) bool {
	for _, term := range t.RoleTitles {
		if MatchTerm(text, term) {
			return true
		}
	}
	return false
}

// Probe returns the probing question for topic given recent user texts, newest first.
// Rules are tried in order against each text before falling back.
func (t *KeywordTable) Probe(topic resume.Topic, texts []string) string {
	probes, ok := t.Probes[topic]
	if !ok {
		return strings.ReplaceAll(t.GenericFallback, placeholderTopic, string(topic))
	}

	for _, text := range texts {
		for _, rule := range probes.Rules {
			var matched []string
			for _, term := range rule.Terms {
				if MatchTerm(text, term) {
					matched = append(matched, term)
				}
			}
			if len(matched) == 0 {
				continue
			}
			if rule.JoinMatches {
				return strings.ReplaceAll(rule.Question, placeholderMatches, strings.Join(matched, ", "))
			}
			return rule.Question
		}
	}

	if probes.Fallback != "" {
		return probes.Fallback
	}
	return strings.ReplaceAll(t.GenericFallback, placeholderTopic, string(topic))
}

// MatchTerm reports whether term occurs in text, ignoring case. ASCII terms must
// stand alone as a word; other terms match as substrings so Korean particles attach.
func MatchTerm(text, term string) bool {
	if term == "" {
		return false
	}
	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)

	if !isASCII(lowerTerm) {
		return strings.Contains(lowerText, lowerTerm)
	}

	for start := 0; start <= len(lowerText)-len(lowerTerm); {
		idx := strings.Index(lowerText[start:], lowerTerm)
		if idx < 0 {
			return false
		}
		begin := start + idx
		end := begin + len(lowerTerm)
		if !asciiWordByte(lowerText, begin-1) && !asciiWordByte(lowerText, end) {
			return true
		}
		start = begin + 1
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// asciiWordByte reports whether the byte at i is an ASCII letter or digit
func asciiWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
