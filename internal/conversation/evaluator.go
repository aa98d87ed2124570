package conversation

import (
	"context"
	"fmt"
	"strings"

	"resumechat/internal/config"
	"resumechat/internal/errors"
	"resumechat/internal/resume"
)

// Evaluator records an answer into the session and decides whether its topic
// has enough information. A false result comes with the follow-up to ask.
type Evaluator interface {
	Policy() string
	Evaluate(ctx context.Context, s *Session, topic resume.Topic, utterance string) (bool, string, error)
}

// NewEvaluator picks exactly one completion policy
func NewEvaluator(policy string, schema resume.FieldSchema, keywords KeywordSource, judge FieldJudge, maxTopicTurns int) (Evaluator, error) {
	switch policy {
	case config.PolicyTurnCount, "":
		return NewTurnCountEvaluator(keywords, maxTopicTurns), nil
	case config.PolicyPerField:
		if judge == nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"per_field completion policy requires a model gateway", nil)
		}
		return NewFieldEvaluator(schema, judge), nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown completion policy: %s", policy), nil)
	}
}

// TurnCountEvaluator completes a topic after a fixed number of counted answers
type TurnCountEvaluator struct {
	keywords KeywordSource
	maxTurns int
}

// NewTurnCountEvaluator creates the turn-count policy; maxTurns below 1 means 2
func NewTurnCountEvaluator(keywords KeywordSource, maxTurns int) *TurnCountEvaluator {
	if maxTurns < 1 {
		maxTurns = 2
	}
	if keywords == nil {
		keywords = NewStaticKeywords(nil)
	}
	return &TurnCountEvaluator{keywords: keywords, maxTurns: maxTurns}
}

// Policy implements Evaluator
func (e *TurnCountEvaluator) Policy() string {
	return config.PolicyTurnCount
}

// Evaluate records the answer first, then counts it. While no title is set, a job
// answer naming a role becomes the title and is bridged without counting toward completion.
func (e *TurnCountEvaluator) Evaluate(_ context.Context, s *Session, topic resume.Topic, utterance string) (bool, string, error) {
	if _, err := s.Data.Record(topic, utterance, s.QuestionCount[topic]); err != nil {
		return false, "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to record answer", err)
	}

	if topic == resume.TopicJobInfo && s.Data.JobInfo.Title == "" && e.keywords.Table().MatchRole(utterance) {
		s.Data.JobInfo.Title = strings.TrimSpace(utterance)
		return false, titleBridge(utterance), nil
	}

	s.QuestionCount[topic]++
	if s.QuestionCount[topic] >= e.maxTurns {
		return true, "", nil
	}
	return false, fixedFollowup(topic), nil
}
