package conversation

import (
	"time"

	"resumechat/internal/resume"
)

// Speaker identifies who produced a turn
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Next actions drive follow-up phrasing and tell a UI shell what comes next
const (
	ActionAskJobTitle     = "ask_job_title"
	ActionAskExperience   = "ask_experience"
	ActionAskProjects     = "ask_projects"
	ActionAskSkills       = "ask_skills"
	ActionAskSummary      = "ask_summary"
	ActionAskFollowup     = "ask_followup"
	ActionAskMoreInfo     = "ask_more_info"
	ActionConfirmNextStep = "confirm_next_step"
	ActionShowResume      = "show_resume"
)

// Turn is one entry in the conversation log
type Turn struct {
	Speaker Speaker      `json:"speaker"`
	Text    string       `json:"text"`
	Topic   resume.Topic `json:"topic,omitempty"`
	At      time.Time    `json:"at"`
}

// Context drives which branch of follow-up phrasing is produced
type Context struct {
	CurrentTopic resume.Topic `json:"current_topic,omitempty"`
	LastResponse string       `json:"last_response,omitempty"`
	NextAction   string       `json:"next_action"`
}

// Session is the whole state of one resume conversation
type Session struct {
	ID              string                `json:"id"`
	Step            int                   `json:"step"`
	Data            resume.Data           `json:"data"`
	Flags           resume.CollectedFlags `json:"flags"`
	History         []Turn                `json:"history"`
	Context         Context               `json:"context"`
	QuestionCount   map[resume.Topic]int  `json:"question_count"`
	AwaitingConfirm bool                  `json:"awaiting_confirm"`
	Processing      bool                  `json:"processing"`
	IntroducedStep  int                   `json:"introduced_step"`
	Policy          string                `json:"policy"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewSession returns a session at step 1 with all-false field flags
func NewSession(id string, schema resume.FieldSchema, policy string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:            id,
		Step:          resume.StepBasicInfo,
		Flags:         resume.NewCollectedFlags(schema),
		History:       []Turn{},
		Context:       Context{NextAction: ActionAskJobTitle},
		QuestionCount: make(map[resume.Topic]int),
		Policy:        policy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

var stepNames = []string{"기본 정보", "직무 확인", "경력 상세화", "프로젝트", "기술 스택", "자기소개", "이력서 확인"}

// Progress describes where a session is in the seven-step flow
type Progress struct {
	Step  int     `json:"step"`
	Total int     `json:"total"`
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// StepName returns the display name of a step, or "" when out of range
func StepName(step int) string {
	if step < 1 || step > len(stepNames) {
		return ""
	}
	return stepNames[step-1]
}

// Progress returns the step name and completion ratio
func (s *Session) Progress() Progress {
	total := len(stepNames)
	return Progress{
		Step:  s.Step,
		Total: total,
		Name:  StepName(s.Step),
		Ratio: float64(s.Step) / float64(total),
	}
}

// ActiveTopic returns the topic of the current step, if it is a chat step
func (s *Session) ActiveTopic() (resume.Topic, bool) {
	return resume.TopicForStep(s.Step)
}

// Done reports whether the conversation reached the review step
func (s *Session) Done() bool {
	return s.Step == resume.StepReview
}

func (s *Session) appendTurn(speaker Speaker, text string, topic resume.Topic) Turn {
	turn := Turn{Speaker: speaker, Text: text, Topic: topic, At: time.Now().UTC()}
	s.History = append(s.History, turn)
	s.UpdatedAt = turn.At
	return turn
}

func (s *Session) say(text string) Turn {
	turn := s.appendTurn(SpeakerBot, text, s.Context.CurrentTopic)
	s.Context.LastResponse = text
	return turn
}

// RecentUserTexts returns up to n of the latest user utterances for topic, newest first
func (s *Session) RecentUserTexts(topic resume.Topic, n int) []string {
	var texts []string
	for i := len(s.History) - 1; i >= 0 && len(texts) < n; i-- {
		t := s.History[i]
		if t.Speaker == SpeakerUser && t.Topic == topic {
			texts = append(texts, t.Text)
		}
	}
	return texts
}

// FirstUserText returns the earliest user utterance recorded for topic
func (s *Session) FirstUserText(topic resume.Topic) string {
	for _, t := range s.History {
		if t.Speaker == SpeakerUser && t.Topic == topic {
			return t.Text
		}
	}
	return ""
}
