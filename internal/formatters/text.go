package formatters

import (
	"fmt"
	"strings"
)

// Section markers and placeholders of the canonical text document
const (
	markerPersonal   = "[인적사항]"
	markerJob        = "[지원 직무]"
	markerSummary    = "[자기소개]"
	markerExperience = "[경력 및 프로젝트 경험]"
	markerProjects   = "[프로젝트 경험]"
	markerSkills     = "[기술 스택]"

	placeholderNotEntered = "미입력"
	placeholderNone       = "없음"

	emptySummary    = "자기소개가 아직 작성되지 않았습니다."
	emptyExperience = "경력 정보가 아직 작성되지 않았습니다."
	emptyProjects   = "프로젝트 정보가 아직 작성되지 않았습니다."
	emptySkills     = "기술 스택이 아직 작성되지 않았습니다."

	labelName      = "이름: "
	labelEmail     = "이메일: "
	labelPhone     = "전화번호: "
	labelPortfolio = "포트폴리오: "
	labelTitle     = "직무: "
	labelTech      = "주요 기술: "
	labelExp       = "주요 경험: "

	// continuationIndent prefixes the second and later lines of a multi-line value
	continuationIndent = "  "
)

// indentContinuation keeps a multi-line value inside its entry when the document is parsed back
func indentContinuation(value string) string {
	return strings.ReplaceAll(value, "\n", "\n"+continuationIndent)
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// field renders a labelled line of the text document
func field(label, value, placeholder string) string {
	return label + indentContinuation(orPlaceholder(value, placeholder)) + "\n"
}

// ResumeTextFormatter renders the canonical plain-text resume
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	d, err := asResume(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString(markerPersonal + "\n")
	output.WriteString(field(labelName, d.BasicInfo.Name, placeholderNotEntered))
	output.WriteString(field(labelEmail, d.BasicInfo.Email, placeholderNotEntered))
	output.WriteString(field(labelPhone, d.BasicInfo.Phone, placeholderNotEntered))
	output.WriteString(field(labelPortfolio, d.BasicInfo.Portfolio, placeholderNone))

	output.WriteString("\n" + markerJob + "\n")
	output.WriteString(field(labelTitle, d.JobInfo.Title, placeholderNotEntered))
	output.WriteString(labelTech + indentContinuation(d.JobInfo.Answer(0)) + "\n")
	output.WriteString(labelExp + indentContinuation(d.JobInfo.Answer(1)) + "\n")

	output.WriteString("\n" + markerSummary + "\n")
	if len(d.Summary) == 0 {
		output.WriteString(emptySummary + "\n")
	}
	for _, s := range d.Summary {
		output.WriteString(indentContinuation(s) + "\n")
	}

	output.WriteString("\n" + markerExperience)
	writeNumbered(&output, d.Experience, emptyExperience)

	output.WriteString("\n\n" + markerProjects)
	writeNumbered(&output, d.Projects, emptyProjects)

	output.WriteString("\n\n" + markerSkills)
	if len(d.Skills) == 0 {
		output.WriteString("\n" + emptySkills)
	}
	for _, s := range d.Skills {
		output.WriteString("\n" + indentContinuation(s))
	}
	output.WriteString("\n")

	return output.String(), nil
}

func writeNumbered(output *strings.Builder, entries []string, placeholder string) {
	if len(entries) == 0 {
		output.WriteString("\n" + placeholder)
		return
	}
	for i, e := range entries {
		fmt.Fprintf(output, "\n%d. %s", i+1, indentContinuation(e))
	}
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "Resume"
}
