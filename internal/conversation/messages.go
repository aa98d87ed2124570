package conversation

import (
	"fmt"

	"resumechat/internal/resume"
)

// ConfirmPrompt is shown when a topic is complete and the user may move on
const ConfirmPrompt = "지금까지 이야기해주신 내용이 충분해 보여요. 다음 단계로 넘어갈까요?"

const defaultFollowup = "조금 더 자세히 설명해주실 수 있을까요?"

// Fixed follow-ups of the turn-count policy, asked after the first answer of a topic
var fixedFollowups = map[resume.Topic]string{
	resume.TopicJobInfo:    "해당 직무에서 가장 중요한 기술이나 역량은 무엇이라고 생각하시나요?",
	resume.TopicExperience: "해당 경험에서 가장 기억에 남는 성과나 어려움은 무엇이었나요?",
	resume.TopicProjects:   "이 프로젝트에서 본인의 역할과 기여한 부분을 좀 더 자세히 설명해주실 수 있을까요?",
	resume.TopicSkills:     "앞으로 발전시키고 싶은 기술 분야가 있으신가요?",
	resume.TopicSummary:    "앞으로의 커리어 목표나 발전 방향에 대해 말씀해주세요.",
}

func fixedFollowup(topic resume.Topic) string {
	if q, ok := fixedFollowups[topic]; ok {
		return q
	}
	return defaultFollowup
}

// titleBridge acknowledges a job title and asks about the stack behind it
func titleBridge(utterance string) string {
	return fmt.Sprintf("%s로 지원하시는군요. 해당 직무에서 주로 사용하시는 기술 스택이나 경험에 대해 알려주세요.", utterance)
}

// ErrorTurnText is the canned turn shown when a turn fails
func ErrorTurnText(message string) string {
	return "죄송합니다, 오류가 발생했습니다: " + message
}

var nextActions = map[resume.Topic]string{
	resume.TopicJobInfo:    ActionAskJobTitle,
	resume.TopicExperience: ActionAskExperience,
	resume.TopicProjects:   ActionAskProjects,
	resume.TopicSkills:     ActionAskSkills,
	resume.TopicSummary:    ActionAskSummary,
}

// introMessage returns the canned introduction for a topic
func introMessage(topic resume.Topic, name string) string {
	switch topic {
	case resume.TopicJobInfo:
		return fmt.Sprintf("안녕하세요 %s님! 😊\n"+
			"이력서 작성을 도와드릴게요. 차근차근 이야기 나누면서 좋은 이력서를 만들어보아요!\n\n"+
			"먼저, 어떤 직무에 지원하실 예정인가요?\n"+
			"예시) `백엔드 개발자, DevOps 엔지니어`\n\n"+
			"위 예시 중에서 선택하시거나, 다른 직무를 말씀해 주셔도 좋아요!", name)
	case resume.TopicExperience:
		return fmt.Sprintf("이제 %s님의 직장 경력에 대해 자세히 알아볼게요! 🌟\n\n"+
			"지금까지 어떤 회사에서 근무하셨는지 말씀해 주실 수 있을까요?\n"+
			"회사명, 담당 직무, 근무 기간, 주요 업무와 성과 등을 중심으로 설명해 주시면 좋겠어요.", name)
	case resume.TopicProjects:
		return fmt.Sprintf("%s님, 이번에는 주요 프로젝트 경험에 대해 이야기 나눠볼까요? 🚀\n\n"+
			"진행했던 프로젝트 중에서 기술적으로 가장 도전적이었거나 의미 있었던 프로젝트를 소개해 주세요.\n"+
			"프로젝트명, 목적, 사용한 기술 스택, 본인의 역할, 그리고 달성한 성과를 간단히 소개해 주시면 좋겠어요.", name)
	case resume.TopicSkills:
		return fmt.Sprintf("이제 %s님의 기술 스택에 대해 알아볼게요! 💻\n\n"+
			"주로 사용하시는 기술 스택은 무엇인가요? 각 기술에 대한 숙련도도 함께 말씀해 주시면 도움이 될 것 같아요.", name)
	case resume.TopicSummary:
		return fmt.Sprintf("마지막으로 자기소개를 작성해볼까요? ✨\n\n"+
			"%s님의 강점과 특기를 중심으로 간단히 자기소개를 해주시겠어요?\n"+
			"지원하시는 직무에서 본인이 가진 차별화된 역량이 있다면 함께 말씀해 주세요.", name)
	}
	return ""
}
