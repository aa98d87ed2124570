package conversation

import (
	"context"

	"resumechat/internal/ai"
	"resumechat/internal/config"
	"resumechat/internal/errors"
	"resumechat/internal/resume"
)

// FieldJudge is the model-backed part of the per-field policy
type FieldJudge interface {
	JudgeField(ctx context.Context, field, description, utterance string) (ai.Verdict, error)
	FollowupQuestion(ctx context.Context, field, description, previousAnswer string) (string, error)
}

var _ FieldJudge = (*ai.Service)(nil)

// FieldEvaluator asks the model whether each pending schema field is covered
type FieldEvaluator struct {
	schema resume.FieldSchema
	judge  FieldJudge
}

// NewFieldEvaluator creates the per-field policy
func NewFieldEvaluator(schema resume.FieldSchema, judge FieldJudge) *FieldEvaluator {
	return &FieldEvaluator{schema: schema, judge: judge}
}

// Policy implements Evaluator
func (e *FieldEvaluator) Policy() string {
	return config.PolicyPerField
}

// Evaluate records the answer, then judges pending fields in schema order. The
// first field not fully covered stops the pass and gets a generated question.
// A topic is forced complete once it has used as many turns as it has fields.
func (e *FieldEvaluator) Evaluate(ctx context.Context, s *Session, topic resume.Topic, utterance string) (bool, string, error) {
	if _, err := s.Data.Record(topic, utterance, s.QuestionCount[topic]); err != nil {
		return false, "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to record answer", err)
	}
	s.QuestionCount[topic]++

	for _, field := range s.Flags.Pending(e.schema, topic) {
		verdict, err := e.judge.JudgeField(ctx, field.Name, field.Description, utterance)
		if err != nil {
			return false, "", err
		}

		if verdict == ai.VerdictEnough {
			s.Flags.Mark(topic, field.Name)
			if topic == resume.TopicJobInfo && field.Name == resume.FieldJobTitle {
				s.Data.SetTitleIfEmpty(utterance)
			}
			continue
		}

		if s.QuestionCount[topic] >= len(e.schema[topic]) {
			return true, "", nil
		}

		question, err := e.judge.FollowupQuestion(ctx, field.Name, field.Description, utterance)
		if err != nil {
			return false, "", err
		}
		return false, question, nil
	}

	return true, "", nil
}
