package resume

import (
	"testing"

	"resumechat/internal/errors"
)

func TestBasicInfoValidate(t *testing.T) {
	tests := []struct {
		name      string
		info      BasicInfo
		wantField string
		wantMsg   string
	}{
		{
			name: "minimal valid",
			info: BasicInfo{Name: "홍길동", Email: "a@b.com"},
		},
		{
			name: "valid with phone and portfolio",
			info: BasicInfo{Name: "홍길동", Email: "a@b.com", Phone: "010-1234-5678", Portfolio: "https://github.com/hong"},
		},
		{
			name: "surrounding whitespace is ignored",
			info: BasicInfo{Name: "  홍길동 ", Email: " a@b.com "},
		},
		{
			name:      "missing name",
			info:      BasicInfo{Email: "a@b.com"},
			wantField: "name",
			wantMsg:   MsgRequired,
		},
		{
			name:      "blank name",
			info:      BasicInfo{Name: "   ", Email: "a@b.com"},
			wantField: "name",
			wantMsg:   MsgRequired,
		},
		{
			name:      "missing email",
			info:      BasicInfo{Name: "홍길동"},
			wantField: "email",
			wantMsg:   MsgRequired,
		},
		{
			name:      "email without at",
			info:      BasicInfo{Name: "홍길동", Email: "ab.com"},
			wantField: "email",
			wantMsg:   MsgInvalidEmail,
		},
		{
			name:      "email without dot",
			info:      BasicInfo{Name: "홍길동", Email: "a@bcom"},
			wantField: "email",
			wantMsg:   MsgInvalidEmail,
		},
		{
			name:      "phone with letters",
			info:      BasicInfo{Name: "홍길동", Email: "a@b.com", Phone: "010-abcd"},
			wantField: "phone",
			wantMsg:   MsgInvalidPhone,
		},
		{
			name:      "phone with spaces",
			info:      BasicInfo{Name: "홍길동", Email: "a@b.com", Phone: "010 1234"},
			wantField: "phone",
			wantMsg:   MsgInvalidPhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			appErr, ok := errors.As(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Type != errors.ErrorTypeValidation {
				t.Errorf("expected validation error, got %s", appErr.Type)
			}
			if appErr.Context["field"] != tt.wantField {
				t.Errorf("expected field %s, got %v", tt.wantField, appErr.Context["field"])
			}
			if appErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, appErr.Message)
			}
		})
	}
}

func TestTopicSteps(t *testing.T) {
	for i, topic := range Topics() {
		step := topic.Step()
		if step != i+2 {
			t.Errorf("topic %s: expected step %d, got %d", topic, i+2, step)
		}
		got, ok := TopicForStep(step)
		if !ok || got != topic {
			t.Errorf("TopicForStep(%d) = %s, %v", step, got, ok)
		}
	}

	for _, step := range []int{0, StepBasicInfo, StepReview, 8} {
		if _, ok := TopicForStep(step); ok {
			t.Errorf("step %d should host no topic", step)
		}
	}
	if Topic("hobbies").Valid() {
		t.Error("unknown topic reported valid")
	}
}

func TestCollectedFlags(t *testing.T) {
	schema := DefaultSchema()
	flags := NewCollectedFlags(schema)

	pending := flags.Pending(schema, TopicSummary)
	if len(pending) != 3 || pending[0].Name != "간단한 자기소개" {
		t.Fatalf("unexpected pending fields: %v", pending)
	}

	flags.Mark(TopicSummary, "일하는 스타일")
	flags.Mark(TopicSummary, "일하는 스타일")
	if flags.Count(TopicSummary) != 1 {
		t.Errorf("expected 1 satisfied field, got %d", flags.Count(TopicSummary))
	}
	if flags.Complete(schema, TopicSummary) {
		t.Error("topic should not be complete yet")
	}

	flags.Mark(TopicSummary, "간단한 자기소개")
	flags.Mark(TopicSummary, "커리어 방향 or 포부")
	if !flags.Complete(schema, TopicSummary) {
		t.Error("topic should be complete")
	}
	if flags.Complete(schema, TopicSkills) {
		t.Error("untouched topic should not be complete")
	}
}

func TestRecordExperienceContinuation(t *testing.T) {
	var d Data

	created, err := d.Record(TopicExperience, "A사 백엔드 개발 3년", 0)
	if err != nil || !created {
		t.Fatalf("first turn should create an entry: created=%v err=%v", created, err)
	}
	created, _ = d.Record(TopicExperience, "결제 시스템 리팩터링", 1)
	if created {
		t.Error("second turn should continue the last entry")
	}

	if len(d.Experience) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(d.Experience))
	}
	want := "A사 백엔드 개발 3년\n추가 정보: 결제 시스템 리팩터링"
	if d.Experience[0] != want {
		t.Errorf("expected %q, got %q", want, d.Experience[0])
	}
}

func TestRecordProjectsWithoutPriorEntry(t *testing.T) {
	var d Data
	// A continuation turn with no entry yet still keeps the answer
	if _, err := d.Record(TopicProjects, "사내 배포 도구", 1); err != nil {
		t.Fatal(err)
	}
	if len(d.Projects) != 1 || d.Projects[0] != "사내 배포 도구" {
		t.Errorf("unexpected projects: %v", d.Projects)
	}
}

func TestRecordSkillsSuppressesDuplicates(t *testing.T) {
	var d Data
	for i, s := range []string{"Python", "Go", "Python"} {
		if _, err := d.Record(TopicSkills, s, i); err != nil {
			t.Fatal(err)
		}
	}
	if len(d.Skills) != 2 || d.Skills[0] != "- Python" || d.Skills[1] != "- Go" {
		t.Errorf("unexpected skills: %v", d.Skills)
	}
}

func TestRecordJobInfoAnswers(t *testing.T) {
	var d Data
	_, _ = d.Record(TopicJobInfo, "백엔드 개발자", 0)
	_, _ = d.Record(TopicJobInfo, "Go, Kubernetes", 0)

	fields := d.JobInfo.Fields()
	if fields["answer_0"] != "백엔드 개발자" || fields["answer_1"] != "Go, Kubernetes" {
		t.Errorf("unexpected job info fields: %v", fields)
	}
	if _, ok := fields["title"]; ok {
		t.Error("title should not be set by recording alone")
	}
	if d.JobInfo.Answer(5) != "" {
		t.Error("out-of-range answer should be empty")
	}

	d.SetTitleIfEmpty("백엔드 개발자")
	d.SetTitleIfEmpty("PM")
	if d.JobInfo.Title != "백엔드 개발자" {
		t.Errorf("title should not be overwritten, got %q", d.JobInfo.Title)
	}
}

func TestRecordUnknownTopic(t *testing.T) {
	var d Data
	if _, err := d.Record(Topic("hobbies"), "등산", 0); err == nil {
		t.Error("expected error for unknown topic")
	}
}

func TestValidate(t *testing.T) {
	full := Data{
		BasicInfo:  BasicInfo{Name: "홍길동", Email: "a@b.com"},
		JobInfo:    JobInfo{Title: "백엔드 개발자"},
		Experience: []string{"A사"},
		Projects:   []string{"P"},
		Skills:     []string{"- Go"},
		Summary:    []string{"안녕하세요"},
	}
	if missing := Validate(full); len(missing) != 0 {
		t.Errorf("expected nothing missing, got %v", missing)
	}

	noTitle := full
	noTitle.JobInfo.Title = ""
	noTitle.Skills = nil
	missing := Validate(noTitle)
	if len(missing) != 2 || missing[0] != MissingTitle || missing[1] != MissingSkills {
		t.Errorf("unexpected missing list: %v", missing)
	}

	blockingIDs := Blocking(missing)
	if len(blockingIDs) != 1 || blockingIDs[0] != MissingTitle {
		t.Errorf("unexpected blocking list: %v", blockingIDs)
	}

	empty := Validate(Data{})
	want := []string{MissingName, MissingEmail, MissingTitle, MissingSummary, MissingExperience, MissingProjects, MissingSkills}
	if len(empty) != len(want) {
		t.Fatalf("expected %v, got %v", want, empty)
	}
	for i := range want {
		if empty[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], empty[i])
		}
	}

	if MissingAdvisory(nil) != "" {
		t.Error("empty advisory expected")
	}
	if got := MissingAdvisory([]string{MissingTitle, MissingSkills}); got != "다음 항목이 누락되었습니다: job_info.title, skills" {
		t.Errorf("unexpected advisory: %q", got)
	}
}
