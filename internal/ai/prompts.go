package ai

import (
	"fmt"
	"strings"
	"unicode"

	"resumechat/internal/config"
)

// Verdict is the model's judgement of how well an answer covers one field
type Verdict string

const (
	VerdictEnough  Verdict = "ENOUGH"
	VerdictPartial Verdict = "PARTIAL"
	VerdictNo      Verdict = "NO"
)

// DefaultSystemPrompt is the system instruction shared by both operations
const DefaultSystemPrompt = `당신은 한국어로 이력서 작성을 돕는 친절한 커리어 코치입니다.

- 사용자가 말하지 않은 경력, 기술, 성과를 지어내지 마세요
- 짧고 자연스러운 존댓말을 사용하세요
- 요청받은 형식만으로 답하세요`

// DefaultJudgeFieldPrompt asks whether an answer supplies a field.
// Placeholders: field name, field description, user answer.
const DefaultJudgeFieldPrompt = `다음 사용자 응답이 이력서 항목을 채우기에 충분한 정보를 담고 있는지 판단해주세요.

필드명: %s
설명: %s

사용자 응답:
-----
%s
-----

ENOUGH, PARTIAL, NO 중 하나의 단어로만 답하세요.
- ENOUGH: 이 필드를 작성하기에 충분한 정보가 있음
- PARTIAL: 일부 정보만 있음
- NO: 관련 정보가 없음`

// DefaultFollowupQuestionPrompt asks for one question about a missing field.
// Placeholders: previous answer, field name, field description.
const DefaultFollowupQuestionPrompt = `이전 응답: "%s"

다음 필드에 대한 추가 정보를 요청하는 질문을 생성해주세요:
필드명: %s
설명: %s

질문은 자연스럽고 친근한 말투로 한 문장만 작성해주세요.`

// DefaultFirstQuestionPrompt is used when there is no previous answer yet.
// Placeholders: field name, field description.
const DefaultFirstQuestionPrompt = `다음 필드에 대한 질문을 생성해주세요:
필드명: %s
설명: %s

질문은 자연스럽고 친근한 말투로 한 문장만 작성해주세요.`

// SystemPromptFor resolves the system instruction for an operation
func SystemPromptFor(operation string, cfg *config.PromptConfig) string {
	loaded := config.GetPromptsForOperation(operation)
	return resolvePrompt(loaded.System, cfg.System, DefaultSystemPrompt)
}

// JudgeFieldPrompt builds the ENOUGH/PARTIAL/NO prompt for one field
func JudgeFieldPrompt(cfg *config.PromptConfig, field, description, utterance string) string {
	loaded := config.GetPromptsForOperation(config.OperationJudge)
	template := resolvePrompt(loaded.JudgeField, cfg.JudgeField, DefaultJudgeFieldPrompt)
	return fmt.Sprintf(template, field, description, utterance)
}

// FollowupQuestionPrompt builds the question-generation prompt for one field
func FollowupQuestionPrompt(cfg *config.PromptConfig, field, description, previousAnswer string) string {
	if strings.TrimSpace(previousAnswer) == "" {
		return fmt.Sprintf(DefaultFirstQuestionPrompt, field, description)
	}
	loaded := config.GetPromptsForOperation(config.OperationQuestion)
	template := resolvePrompt(loaded.FollowupQuestion, cfg.FollowupQuestion, DefaultFollowupQuestionPrompt)
	return fmt.Sprintf(template, previousAnswer, field, description)
}

// ParseVerdict maps model output to a Verdict; the first recognised word wins
// and anything unrecognised counts as NO.
func ParseVerdict(text string) Verdict {
	words := strings.FieldsFunc(strings.ToUpper(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		switch w {
		case "ENOUGH":
			return VerdictEnough
		case "PARTIAL", "PARTIALLY":
			return VerdictPartial
		case "NO", "NOT", "NONE":
			return VerdictNo
		}
	}
	return VerdictNo
}

// resolvePrompt selects a prompt in priority order: loaded file, config string, default
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
