package config

import (
	"sync"
)

var (
	loadedPrompts   AllLoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	System           string
	JudgeField       string
	FollowupQuestion string
}

// AllLoadedPrompts holds all loaded prompts for all operations
type AllLoadedPrompts struct {
	Global   LoadedPrompts
	Judge    LoadedPrompts
	Question LoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation.
// Empty operation-level prompts fall back to the global ones.
func GetPromptsForOperation(operation string) LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	var result LoadedPrompts
	switch operation {
	case OperationJudge:
		result = loadedPrompts.Judge
	case OperationQuestion:
		result = loadedPrompts.Question
	}

	global := loadedPrompts.Global
	if result.System == "" {
		result.System = global.System
	}
	if result.JudgeField == "" {
		result.JudgeField = global.JudgeField
	}
	if result.FollowupQuestion == "" {
		result.FollowupQuestion = global.FollowupQuestion
	}
	return result
}

// GetLoadedPrompts returns a snapshot of every loaded prompt
func GetLoadedPrompts() AllLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

func setLoadedPrompts(prompts AllLoadedPrompts) {
	loadedPromptsMu.Lock()
	loadedPrompts = prompts
	loadedPromptsMu.Unlock()
}
