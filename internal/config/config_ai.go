package config

// Gateway operation names
const (
	OperationJudge    = "judge"
	OperationQuestion = "question"
)

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}

	// Prompt strings and files fall back to the global ones
	fallback := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fallback(&opCfg.CustomPrompts.System, c.AI.CustomPrompts.System)
	fallback(&opCfg.CustomPrompts.SystemFile, c.AI.CustomPrompts.SystemFile)
	fallback(&opCfg.CustomPrompts.JudgeField, c.AI.CustomPrompts.JudgeField)
	fallback(&opCfg.CustomPrompts.JudgeFieldFile, c.AI.CustomPrompts.JudgeFieldFile)
	fallback(&opCfg.CustomPrompts.FollowupQuestion, c.AI.CustomPrompts.FollowupQuestion)
	fallback(&opCfg.CustomPrompts.FollowupQuestionFile, c.AI.CustomPrompts.FollowupQuestionFile)
}

// GetJudgeConfig returns the gateway configuration for field judging with fallback to global config
func (c *Config) GetJudgeConfig() OperationAIConfig {
	config := c.AI.Judge
	c.applyOperationDefaults(&config)
	return config
}

// GetQuestionConfig returns the gateway configuration for question generation with fallback to global config
func (c *Config) GetQuestionConfig() OperationAIConfig {
	config := c.AI.Question
	c.applyOperationDefaults(&config)
	return config
}

// GetOperationConfig returns the configuration for a named gateway operation
func (c *Config) GetOperationConfig(operation string) OperationAIConfig {
	switch operation {
	case OperationJudge:
		return c.GetJudgeConfig()
	case OperationQuestion:
		return c.GetQuestionConfig()
	default:
		config := OperationAIConfig{}
		c.applyOperationDefaults(&config)
		return config
	}
}
