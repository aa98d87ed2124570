package conversation

import (
	"fmt"
	"time"

	"resumechat/internal/errors"
	"resumechat/internal/resume"
)

func invalidTransition(format string, args ...any) error {
	return errors.NewStateError(errors.ErrCodeInvalidTransition, fmt.Sprintf(format, args...), nil)
}

// SubmitBasicInfo validates basic info at step 1 and moves to the job topic
func (s *Session) SubmitBasicInfo(info resume.BasicInfo) ([]Turn, error) {
	if s.Step != resume.StepBasicInfo {
		return nil, invalidTransition("basic info can only be submitted at step %d, session is at step %d", resume.StepBasicInfo, s.Step)
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	s.Data.BasicInfo = info.Normalize()
	return s.enter(resume.StepFirstTopic), nil
}

// Advance moves past a completed, confirmed topic. Leaving the job topic without
// a title promotes its first answer to the title.
func (s *Session) Advance() ([]Turn, error) {
	if !s.AwaitingConfirm {
		return nil, invalidTransition("no completed step is awaiting confirmation")
	}
	if s.Step < resume.StepFirstTopic || s.Step >= resume.StepReview {
		return nil, invalidTransition("cannot advance from step %d", s.Step)
	}

	if s.Step == resume.TopicJobInfo.Step() && s.Data.JobInfo.Title == "" {
		first := s.Data.JobInfo.Answer(0)
		if first == "" {
			first = s.FirstUserText(resume.TopicJobInfo)
		}
		s.Data.SetTitleIfEmpty(first)
	}

	s.AwaitingConfirm = false
	return s.enter(s.Step + 1), nil
}

// Decline keeps the user on the current topic and appends a probing question.
// Counters and collected data are left untouched.
func (s *Session) Decline(probe string) ([]Turn, error) {
	if !s.AwaitingConfirm {
		return nil, invalidTransition("no completed step is awaiting confirmation")
	}

	s.AwaitingConfirm = false
	s.Context.NextAction = ActionAskMoreInfo
	return []Turn{s.say(probe)}, nil
}

// EditTo moves back to an earlier step. Data and history are kept; a topic
// step re-emits its introduction so the user knows where they are.
func (s *Session) EditTo(step int) ([]Turn, error) {
	if step < resume.StepBasicInfo || step >= s.Step {
		return nil, invalidTransition("edit target %d must be between %d and %d", step, resume.StepBasicInfo, s.Step-1)
	}

	s.AwaitingConfirm = false
	if step == resume.StepBasicInfo {
		s.Step = step
		s.IntroducedStep = step
		s.Context.CurrentTopic = ""
		s.Context.NextAction = ActionAskJobTitle
		s.UpdatedAt = time.Now().UTC()
		return nil, nil
	}
	return s.enter(step), nil
}

// Reset discards all conversation state, keeping the session id and policy
func (s *Session) Reset(schema resume.FieldSchema) {
	*s = *NewSession(s.ID, schema, s.Policy)
}

// enter makes step current and emits its introduction at most once per entry
func (s *Session) enter(step int) []Turn {
	s.Step = step

	if step == resume.StepReview {
		s.Context.CurrentTopic = ""
		s.Context.NextAction = ActionShowResume
		s.IntroducedStep = step
		s.UpdatedAt = time.Now().UTC()
		return nil
	}

	topic, ok := resume.TopicForStep(step)
	if !ok {
		return nil
	}
	s.Context.CurrentTopic = topic
	s.Context.NextAction = nextActions[topic]

	if s.IntroducedStep == step {
		return nil
	}
	s.IntroducedStep = step
	return []Turn{s.say(introMessage(topic, s.Data.BasicInfo.Name))}
}
