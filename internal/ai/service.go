package ai

import (
	"context"

	"resumechat/internal/config"
	"resumechat/internal/errors"
	"resumechat/internal/observability"
)

// Service runs the two gateway operations used by the conversation: judging
// whether an answer covers a field, and phrasing a question for a field.
type Service struct {
	judge           Gateway
	question        Gateway
	judgePrompts    config.PromptConfig
	questionPrompts config.PromptConfig
	logger          *errors.Logger
}

// NewService creates both operation gateways from configuration
func NewService(cfg *config.Config, logger *errors.Logger, obs *observability.ObservabilityManager) (*Service, error) {
	judgeCfg := cfg.GetJudgeConfig()
	judge, err := NewGateway(&judgeCfg, config.OperationJudge, logger, obs)
	if err != nil {
		return nil, err
	}

	questionCfg := cfg.GetQuestionConfig()
	question, err := NewGateway(&questionCfg, config.OperationQuestion, logger, obs)
	if err != nil {
		_ = judge.Close()
		return nil, err
	}

	return &Service{
		judge:           judge,
		question:        question,
		judgePrompts:    judgeCfg.CustomPrompts,
		questionPrompts: questionCfg.CustomPrompts,
		logger:          logger,
	}, nil
}

// NewServiceWithGateways wires already constructed gateways using default prompts
func NewServiceWithGateways(judge, question Gateway, logger *errors.Logger) *Service {
	return &Service{
		judge:    judge,
		question: question,
		logger:   logger,
	}
}

// JudgeField asks the model whether utterance supplies the named field
func (s *Service) JudgeField(ctx context.Context, field, description, utterance string) (Verdict, error) {
	text, err := s.judge.Generate(ctx, JudgeFieldPrompt(&s.judgePrompts, field, description, utterance))
	if err != nil {
		return VerdictNo, err
	}

	verdict := ParseVerdict(text)
	s.logger.Debug("Field judged",
		"field", field,
		"verdict", string(verdict),
		"raw", text)
	return verdict, nil
}

// FollowupQuestion asks the model for one question targeting the named field
func (s *Service) FollowupQuestion(ctx context.Context, field, description, previousAnswer string) (string, error) {
	return s.question.Generate(ctx, FollowupQuestionPrompt(&s.questionPrompts, field, description, previousAnswer))
}

// Stats reports breaker state per operation
func (s *Service) Stats() map[string]any {
	stats := map[string]any{}
	for name, g := range s.gateways() {
		if hr, ok := g.(HealthReporter); ok {
			stats[name] = hr.Stats()
		} else {
			stats[name] = map[string]any{"enabled": false}
		}
	}
	stats["overall_healthy"] = s.Healthy()
	return stats
}

// Healthy reports whether no operation breaker is open
func (s *Service) Healthy() bool {
	for _, g := range s.gateways() {
		if hr, ok := g.(HealthReporter); ok && !hr.Healthy() {
			return false
		}
	}
	return true
}

// ModelInfo returns availability of each operation's model for health checks
func (s *Service) ModelInfo(ctx context.Context) map[string]*ModelInfo {
	info := make(map[string]*ModelInfo)
	for name, g := range s.gateways() {
		if hr, ok := g.(HealthReporter); ok {
			info[name] = hr.GetModelInfo(ctx)
		}
	}
	return info
}

// Close releases both gateways
func (s *Service) Close() error {
	var firstErr error
	for _, g := range s.gateways() {
		if err := g.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Service) gateways() map[string]Gateway {
	return map[string]Gateway{
		config.OperationJudge:    s.judge,
		config.OperationQuestion: s.question,
	}
}
