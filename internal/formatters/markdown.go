package formatters

import (
	"fmt"
	"strings"
)

// ResumeMarkdownFormatter renders the resume with headings and lists
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	d, err := asResume(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	title := "이력서"
	if d.BasicInfo.Name != "" {
		title = d.BasicInfo.Name + " 이력서"
	}
	output.WriteString("# " + title + "\n\n")

	output.WriteString("## 인적사항\n\n")
	fmt.Fprintf(&output, "- **이름**: %s\n", orPlaceholder(d.BasicInfo.Name, placeholderNotEntered))
	fmt.Fprintf(&output, "- **이메일**: %s\n", orPlaceholder(d.BasicInfo.Email, placeholderNotEntered))
	fmt.Fprintf(&output, "- **전화번호**: %s\n", orPlaceholder(d.BasicInfo.Phone, placeholderNotEntered))
	fmt.Fprintf(&output, "- **포트폴리오**: %s\n\n", orPlaceholder(d.BasicInfo.Portfolio, placeholderNone))

	output.WriteString("## 지원 직무\n\n")
	fmt.Fprintf(&output, "- **직무**: %s\n", orPlaceholder(d.JobInfo.Title, placeholderNotEntered))
	fmt.Fprintf(&output, "- **주요 기술**: %s\n", orPlaceholder(d.JobInfo.Answer(0), placeholderNotEntered))
	fmt.Fprintf(&output, "- **주요 경험**: %s\n\n", orPlaceholder(d.JobInfo.Answer(1), placeholderNotEntered))

	output.WriteString("## 자기소개\n\n")
	if len(d.Summary) == 0 {
		output.WriteString("_" + emptySummary + "_\n\n")
	} else {
		output.WriteString(strings.Join(d.Summary, "\n\n") + "\n\n")
	}

	output.WriteString("## 경력\n\n")
	writeMarkdownList(&output, d.Experience, emptyExperience)

	output.WriteString("## 프로젝트\n\n")
	writeMarkdownList(&output, d.Projects, emptyProjects)

	output.WriteString("## 기술 스택\n\n")
	if len(d.Skills) == 0 {
		output.WriteString("_" + emptySkills + "_\n")
	}
	for _, s := range d.Skills {
		output.WriteString(s + "\n")
	}

	return output.String(), nil
}

// writeMarkdownList writes entries as a numbered list, indenting continuation lines under their item
func writeMarkdownList(output *strings.Builder, entries []string, placeholder string) {
	if len(entries) == 0 {
		output.WriteString("_" + placeholder + "_\n\n")
		return
	}
	for i, e := range entries {
		lines := strings.Split(e, "\n")
		fmt.Fprintf(output, "%d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			output.WriteString("   " + line + "\n")
		}
	}
	output.WriteString("\n")
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "Resume"
}
