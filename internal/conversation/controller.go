package conversation

import (
	"context"
	"fmt"
	"strings"

	"resumechat/internal/errors"
	"resumechat/internal/formatters"
	"resumechat/internal/observability"
	"resumechat/internal/resume"
)

const outcomeError = "error"

// Result is what one event produced
type Result struct {
	Turns                []Turn   `json:"turns"`
	AwaitingConfirmation bool     `json:"awaiting_confirmation"`
	ConfirmPrompt        string   `json:"confirm_prompt,omitempty"`
	Step                 int      `json:"step"`
	Progress             Progress `json:"progress"`
	NextAction           string   `json:"next_action"`
	Done                 bool     `json:"done"`
}

// Review is the final-step view of the resume
type Review struct {
	Missing  []string `json:"missing"`
	Blocking []string `json:"blocking"`
	Advisory string   `json:"advisory,omitempty"`
	Format   string   `json:"format"`
	Document string   `json:"document,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Controller drives sessions through one event at a time
type Controller struct {
	schema    resume.FieldSchema
	evaluator Evaluator
	prober    *Prober
	obs       *observability.ObservabilityManager
	logger    *errors.Logger
}

// NewController creates a controller; obs may be nil
func NewController(schema resume.FieldSchema, evaluator Evaluator, keywords KeywordSource, logger *errors.Logger, obs *observability.ObservabilityManager) *Controller {
	if keywords == nil {
		keywords = NewStaticKeywords(nil)
	}
	return &Controller{
		schema:    schema,
		evaluator: evaluator,
		prober:    NewProber(keywords),
		obs:       obs,
		logger:    logger,
	}
}

// Policy returns the completion policy new sessions are bound to
func (c *Controller) Policy() string {
	return c.evaluator.Policy()
}

// Start creates a fresh session at step 1
func (c *Controller) Start(id string) *Session {
	return NewSession(id, c.schema, c.evaluator.Policy())
}

// SubmitBasicInfo handles the step 1 form
func (c *Controller) SubmitBasicInfo(ctx context.Context, s *Session, info resume.BasicInfo) (Result, error) {
	from := s.Step
	turns, err := s.SubmitBasicInfo(info)
	if err != nil {
		return Result{}, err
	}
	c.obs.RecordStepTransition(ctx, from, s.Step)
	c.logger.Info("Basic info accepted", "session_id", s.ID)
	return c.result(s, turns), nil
}

// Submit processes one user utterance. Evaluator and gateway failures become a
// visible error turn and are not returned; the session stays usable.
func (c *Controller) Submit(ctx context.Context, s *Session, utterance string) (Result, error) {
	if s.Policy != c.evaluator.Policy() {
		return Result{}, errors.NewStateError(errors.ErrCodePolicyMismatch,
			fmt.Sprintf("session uses %s completion policy, controller runs %s", s.Policy, c.evaluator.Policy()), nil)
	}
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return Result{}, errors.NewValidationError(errors.ErrCodeEmptyUtterance, "message must not be empty", nil)
	}
	if s.Processing {
		return Result{}, errors.NewStateError(errors.ErrCodeSessionBusy, "a previous message is still being processed", nil)
	}
	topic, ok := s.ActiveTopic()
	if !ok {
		return Result{}, invalidTransition("no chat topic is active at step %d", s.Step)
	}

	s.Processing = true
	defer func() { s.Processing = false }()

	turns := []Turn{s.appendTurn(SpeakerUser, utterance, topic)}
	wasPending := s.AwaitingConfirm

	complete, followup, err := c.evaluator.Evaluate(ctx, s, topic, utterance)
	if err != nil {
		c.logger.LogError(err, "Turn evaluation failed",
			"session_id", s.ID,
			"topic", string(topic))
		turns = append(turns, s.say(ErrorTurnText(userMessage(err))))
		c.obs.RecordTurn(ctx, string(topic), outcomeError)
		return c.result(s, turns), nil
	}

	switch {
	case wasPending:
		s.AwaitingConfirm = true
		s.Context.NextAction = ActionConfirmNextStep
	case complete:
		s.AwaitingConfirm = true
		s.Context.NextAction = ActionConfirmNextStep
		c.obs.RecordTopicCompletion(ctx, string(topic))
	default:
		s.Context.NextAction = ActionAskFollowup
		turns = append(turns, s.say(followup))
	}

	c.obs.RecordTurn(ctx, string(topic), s.Context.NextAction)
	c.logger.Debug("Turn processed",
		"session_id", s.ID,
		"step", s.Step,
		"topic", string(topic),
		"complete", complete,
		"question_count", s.QuestionCount[topic])

	return c.result(s, turns), nil
}

// Confirm advances past a completed topic
func (c *Controller) Confirm(ctx context.Context, s *Session) (Result, error) {
	from := s.Step
	turns, err := s.Advance()
	if err != nil {
		return Result{}, err
	}
	c.obs.RecordStepTransition(ctx, from, s.Step)
	c.logger.Info("Step advanced", "session_id", s.ID, "from", from, "to", s.Step)
	return c.result(s, turns), nil
}

// Decline stays on the current topic and asks a probing question
func (c *Controller) Decline(_ context.Context, s *Session) (Result, error) {
	turns, err := s.Decline(c.prober.Probe(s))
	if err != nil {
		return Result{}, err
	}
	return c.result(s, turns), nil
}

// Edit moves the session back to an earlier step
func (c *Controller) Edit(ctx context.Context, s *Session, step int) (Result, error) {
	from := s.Step
	turns, err := s.EditTo(step)
	if err != nil {
		return Result{}, err
	}
	c.obs.RecordStepTransition(ctx, from, s.Step)
	c.logger.Info("Step edited", "session_id", s.ID, "from", from, "to", s.Step)
	return c.result(s, turns), nil
}

// Restart discards everything but the session id
func (c *Controller) Restart(_ context.Context, s *Session) Result {
	s.Reset(c.schema)
	c.logger.Info("Session restarted", "session_id", s.ID)
	return c.result(s, nil)
}

// Review validates and renders the resume. Rendering failures are reported in
// the review rather than returned.
func (c *Controller) Review(ctx context.Context, s *Session, format string) Review {
	if format == "" {
		format = formatters.FormatText
	}
	missing := resume.Validate(s.Data)
	review := Review{
		Missing:  missing,
		Blocking: resume.Blocking(missing),
		Advisory: resume.MissingAdvisory(missing),
		Format:   format,
	}

	doc, err := formatters.Assemble(s.Data, format)
	c.obs.RecordResumeRendered(ctx, format, err == nil)
	if err != nil {
		c.logger.LogError(err, "Resume rendering failed", "session_id", s.ID, "format", format)
		review.Error = userMessage(err)
		return review
	}
	review.Document = doc
	return review
}

func (c *Controller) result(s *Session, turns []Turn) Result {
	if turns == nil {
		turns = []Turn{}
	}
	r := Result{
		Turns:                turns,
		AwaitingConfirmation: s.AwaitingConfirm,
		Step:                 s.Step,
		Progress:             s.Progress(),
		NextAction:           s.Context.NextAction,
		Done:                 s.Done(),
	}
	if s.AwaitingConfirm {
		r.ConfirmPrompt = ConfirmPrompt
	}
	return r
}

// userMessage extracts the human-readable part of an error
func userMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

var sectionSteps = map[string]int{
	"basic_info":                   resume.StepBasicInfo,
	string(resume.TopicJobInfo):    resume.TopicJobInfo.Step(),
	string(resume.TopicExperience): resume.TopicExperience.Step(),
	string(resume.TopicProjects):   resume.TopicProjects.Step(),
	string(resume.TopicSkills):     resume.TopicSkills.Step(),
	string(resume.TopicSummary):    resume.TopicSummary.Step(),
}

// StepForSection maps a resume section name to the step that collects it
func StepForSection(section string) (int, bool) {
	step, ok := sectionSteps[strings.ToLower(strings.TrimSpace(section))]
	return step, ok
}
