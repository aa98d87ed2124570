package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFile names one configurable prompt file
type promptFile struct {
	path      string
	kind      string // "system", "judgeField" or "followupQuestion"
	operation string // "global", "judge" or "question"
	target    *string
}

func (c *Config) promptFiles(all *AllLoadedPrompts) []promptFile {
	files := []promptFile{}
	add := func(p PromptConfig, operation string, target *LoadedPrompts) {
		files = append(files,
			promptFile{p.SystemFile, "system", operation, &target.System},
			promptFile{p.JudgeFieldFile, "judgeField", operation, &target.JudgeField},
			promptFile{p.FollowupQuestionFile, "followupQuestion", operation, &target.FollowupQuestion},
		)
	}
	add(c.AI.CustomPrompts, "global", &all.Global)
	add(c.AI.Judge.CustomPrompts, OperationJudge, &all.Judge)
	add(c.AI.Question.CustomPrompts, OperationQuestion, &all.Question)
	return files
}

// templateArgs is how many values each prompt template is formatted with
var templateArgs = map[string]int{
	"judgeField":       3, // field name, field description, user answer
	"followupQuestion": 3, // previous answer, field name, field description
}

// countVerbs counts the formatting directives in a template; "%%" is a literal percent
func countVerbs(template string) int {
	count := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '%' {
			i++
			continue
		}
		count++
	}
	return count
}

// checkTemplate rejects a template whose directives do not match the values it is formatted with
func checkTemplate(kind, operation, template string) error {
	want, ok := templateArgs[kind]
	if !ok || template == "" {
		return nil
	}
	if got := countVerbs(template); got != want {
		return fmt.Errorf("%s %s prompt must contain exactly %d placeholders, found %d", operation, kind, want, got)
	}
	return nil
}

// validatePromptTemplates checks inline prompt templates from the config file
func (c *Config) validatePromptTemplates() error {
	for _, op := range []struct {
		operation string
		prompts   PromptConfig
	}{
		{"global", c.AI.CustomPrompts},
		{OperationJudge, c.AI.Judge.CustomPrompts},
		{OperationQuestion, c.AI.Question.CustomPrompts},
	} {
		if err := checkTemplate("judgeField", op.operation, op.prompts.JudgeField); err != nil {
			return err
		}
		if err := checkTemplate("followupQuestion", op.operation, op.prompts.FollowupQuestion); err != nil {
			return err
		}
	}
	return nil
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	var all AllLoadedPrompts
	for _, f := range c.promptFiles(&all) {
		if f.path == "" {
			continue
		}
		content, err := loadPromptFromFile(f.path, f.kind, f.operation)
		if err != nil {
			return fmt.Errorf("failed to load %s prompts: %w", f.operation, err)
		}
		if err := checkTemplate(f.kind, f.operation, content); err != nil {
			return fmt.Errorf("invalid prompt file %s: %w", f.path, err)
		}
		*f.target = content
	}

	setLoadedPrompts(all)
	logPromptLoadingSummary(all)
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", operation, promptType, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s %s prompt file not found: %s", operation, promptType, absPath)
		}
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", operation, promptType, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", operation, promptType, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		operation, promptType, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	var scratch AllLoadedPrompts
	for _, f := range c.promptFiles(&scratch) {
		if f.path == "" {
			continue
		}
		absPath, err := filepath.Abs(f.path)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", f.operation, f.kind, f.path))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", f.operation, f.kind, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func logPromptLoadingSummary(all AllLoadedPrompts) {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0
	for _, op := range []struct {
		name    string
		prompts LoadedPrompts
	}{
		{"Global", all.Global},
		{"Judge", all.Judge},
		{"Question", all.Question},
	} {
		for kind, content := range map[string]string{
			"system":            op.prompts.System,
			"judge field":       op.prompts.JudgeField,
			"followup question": op.prompts.FollowupQuestion,
		} {
			if content != "" {
				log.Printf("[CONFIG] %s %s prompt: loaded from file", op.name, kind)
				promptCount++
			}
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
