package conversation

import (
	"context"
	"strings"
	"testing"

	"resumechat/internal/ai"
	"resumechat/internal/config"
	"resumechat/internal/errors"
	"resumechat/internal/resume"
)

// fakeJudge answers from a fixed verdict table; unknown fields are NO
type fakeJudge struct {
	verdicts map[string]ai.Verdict
	err      error
	judged   []string
}

func (f *fakeJudge) JudgeField(_ context.Context, field, _, _ string) (ai.Verdict, error) {
	if f.err != nil {
		return "", f.err
	}
	f.judged = append(f.judged, field)
	if v, ok := f.verdicts[field]; ok {
		return v, nil
	}
	return ai.VerdictNo, nil
}

func (f *fakeJudge) FollowupQuestion(_ context.Context, field, _, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return field + "에 대해 알려주세요.", nil
}

func sessionAt(t *testing.T, topic resume.Topic, policy string) *Session {
	t.Helper()
	s := NewSession("s1", resume.DefaultSchema(), policy)
	s.Data.BasicInfo = resume.BasicInfo{Name: "홍길동", Email: "a@b.com"}
	s.enter(topic.Step())
	return s
}

func TestNewEvaluator(t *testing.T) {
	tests := []struct {
		name       string
		policy     string
		judge      FieldJudge
		wantPolicy string
		wantErr    bool
	}{
		{"default is turn count", "", nil, config.PolicyTurnCount, false},
		{"turn count", config.PolicyTurnCount, nil, config.PolicyTurnCount, false},
		{"per field with judge", config.PolicyPerField, &fakeJudge{}, config.PolicyPerField, false},
		{"per field without judge", config.PolicyPerField, nil, "", true},
		{"unknown policy", "hybrid", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewEvaluator(tt.policy, resume.DefaultSchema(), nil, tt.judge, 2)
			if tt.wantErr {
				if errors.CodeOf(err) != errors.ErrCodeInvalidConfig {
					t.Fatalf("error code = %q, want %q", errors.CodeOf(err), errors.ErrCodeInvalidConfig)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Policy() != tt.wantPolicy {
				t.Errorf("Policy() = %q, want %q", ev.Policy(), tt.wantPolicy)
			}
		})
	}
}

func TestTurnCountSkills(t *testing.T) {
	ctx := context.Background()
	ev := NewTurnCountEvaluator(nil, 2)
	s := sessionAt(t, resume.TopicSkills, config.PolicyTurnCount)

	complete, followup, err := ev.Evaluate(ctx, s, resume.TopicSkills, "Python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if complete || followup != fixedFollowup(resume.TopicSkills) {
		t.Errorf("first answer: complete=%v followup=%q", complete, followup)
	}

	complete, _, err = ev.Evaluate(ctx, s, resume.TopicSkills, "Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !complete {
		t.Error("second answer should complete the topic")
	}

	want := []string{"- Python", "- Go"}
	if len(s.Data.Skills) != len(want) {
		t.Fatalf("Skills = %v, want %v", s.Data.Skills, want)
	}
	for i := range want {
		if s.Data.Skills[i] != want[i] {
			t.Errorf("Skills[%d] = %q, want %q", i, s.Data.Skills[i], want[i])
		}
	}
}

func TestTurnCountRoleTitle(t *testing.T) {
	ctx := context.Background()
	ev := NewTurnCountEvaluator(nil, 2)
	s := sessionAt(t, resume.TopicJobInfo, config.PolicyTurnCount)

	complete, followup, err := ev.Evaluate(ctx, s, resume.TopicJobInfo, "백엔드 개발자")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if complete {
		t.Fatal("a role title alone should not complete the topic")
	}
	if !strings.HasPrefix(followup, "백엔드 개발자로 지원하시는군요") {
		t.Errorf("followup = %q", followup)
	}
	if s.Data.JobInfo.Title != "백엔드 개발자" {
		t.Errorf("Title = %q", s.Data.JobInfo.Title)
	}
	if s.QuestionCount[resume.TopicJobInfo] != 0 {
		t.Errorf("role answer was counted: %d", s.QuestionCount[resume.TopicJobInfo])
	}
	if s.Data.JobInfo.Answer(0) != "백엔드 개발자" {
		t.Errorf("answer_0 = %q", s.Data.JobInfo.Answer(0))
	}

	complete, _, _ = ev.Evaluate(ctx, s, resume.TopicJobInfo, "MSA 설계와 운영")
	if complete {
		t.Error("first counted answer should not complete")
	}
	complete, _, _ = ev.Evaluate(ctx, s, resume.TopicJobInfo, "대용량 트래픽 처리")
	if !complete {
		t.Error("second counted answer should complete")
	}
	if len(s.Data.JobInfo.Answers) != 3 {
		t.Errorf("Answers = %v", s.Data.JobInfo.Answers)
	}
}

func TestTurnCountRoleTitleOnlyOnce(t *testing.T) {
	ctx := context.Background()
	ev := NewTurnCountEvaluator(nil, 2)
	s := sessionAt(t, resume.TopicJobInfo, config.PolicyTurnCount)

	answers := []string{"백엔드 개발자", "백엔드 개발자로 결제 API를 만들었습니다", "개발자 세 명과 MSA 전환을 이끌었습니다"}
	var complete bool
	for i, u := range answers {
		var err error
		complete, _, err = ev.Evaluate(ctx, s, resume.TopicJobInfo, u)
		if err != nil {
			t.Fatalf("answer %d: unexpected error: %v", i, err)
		}
		if complete && i < len(answers)-1 {
			t.Fatalf("answer %d completed the topic early", i)
		}
	}

	if !complete {
		t.Error("third answer should complete the topic")
	}
	if s.Data.JobInfo.Title != "백엔드 개발자" {
		t.Errorf("Title = %q, want the first role answer", s.Data.JobInfo.Title)
	}
	if s.QuestionCount[resume.TopicJobInfo] != 2 {
		t.Errorf("QuestionCount = %d, want 2", s.QuestionCount[resume.TopicJobInfo])
	}
}

func TestTurnCountExperienceContinuation(t *testing.T) {
	ctx := context.Background()
	ev := NewTurnCountEvaluator(nil, 3)
	s := sessionAt(t, resume.TopicExperience, config.PolicyTurnCount)

	for _, u := range []string{"A사 백엔드 3년", "결제 시스템 개편", "장애율 40% 감소"} {
		if _, _, err := ev.Evaluate(ctx, s, resume.TopicExperience, u); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(s.Data.Experience) != 1 {
		t.Fatalf("Experience = %v, want a single continued entry", s.Data.Experience)
	}
	want := "A사 백엔드 3년" + resume.ContinuationPrefix + "결제 시스템 개편" + resume.ContinuationPrefix + "장애율 40% 감소"
	if s.Data.Experience[0] != want {
		t.Errorf("Experience[0] = %q, want %q", s.Data.Experience[0], want)
	}
}

func TestFieldEvaluator(t *testing.T) {
	ctx := context.Background()
	schema := resume.DefaultSchema()

	t.Run("asks about the first uncovered field", func(t *testing.T) {
		judge := &fakeJudge{verdicts: map[string]ai.Verdict{
			resume.FieldJobTitle: ai.VerdictEnough,
			"관심 기술 분야":           ai.VerdictPartial,
		}}
		ev := NewFieldEvaluator(schema, judge)
		s := sessionAt(t, resume.TopicJobInfo, config.PolicyPerField)

		complete, question, err := ev.Evaluate(ctx, s, resume.TopicJobInfo, "백엔드 개발자")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if complete {
			t.Fatal("topic should not be complete")
		}
		if question != "관심 기술 분야에 대해 알려주세요." {
			t.Errorf("question = %q", question)
		}
		if !s.Flags.Satisfied(resume.TopicJobInfo, resume.FieldJobTitle) {
			t.Error("job title flag should be set")
		}
		if s.Data.JobInfo.Title != "백엔드 개발자" {
			t.Errorf("Title = %q", s.Data.JobInfo.Title)
		}

		judge.judged = nil
		if _, _, err := ev.Evaluate(ctx, s, resume.TopicJobInfo, "서버 개발"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(judge.judged) != 1 || judge.judged[0] != "관심 기술 분야" {
			t.Errorf("satisfied fields were judged again: %v", judge.judged)
		}
	})

	t.Run("forced complete after one turn per field", func(t *testing.T) {
		ev := NewFieldEvaluator(schema, &fakeJudge{})
		s := sessionAt(t, resume.TopicSummary, config.PolicyPerField)

		for i := 1; i <= len(schema[resume.TopicSummary]); i++ {
			complete, _, err := ev.Evaluate(ctx, s, resume.TopicSummary, "성실합니다")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if wantComplete := i == len(schema[resume.TopicSummary]); complete != wantComplete {
				t.Errorf("turn %d: complete = %v, want %v", i, complete, wantComplete)
			}
		}
	})

	t.Run("all fields covered", func(t *testing.T) {
		verdicts := make(map[string]ai.Verdict)
		for _, f := range schema[resume.TopicSkills] {
			verdicts[f.Name] = ai.VerdictEnough
		}
		ev := NewFieldEvaluator(schema, &fakeJudge{verdicts: verdicts})
		s := sessionAt(t, resume.TopicSkills, config.PolicyPerField)

		complete, _, err := ev.Evaluate(ctx, s, resume.TopicSkills, "Go, Spring, MySQL, Docker")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !complete || !s.Flags.Complete(schema, resume.TopicSkills) {
			t.Error("topic should be complete when every field is covered")
		}
	})

	t.Run("judge failure is returned after recording", func(t *testing.T) {
		judge := &fakeJudge{err: errors.NewAIError(errors.ErrCodeGatewayFailed, "model unavailable", nil)}
		ev := NewFieldEvaluator(schema, judge)
		s := sessionAt(t, resume.TopicSkills, config.PolicyPerField)

		_, _, err := ev.Evaluate(ctx, s, resume.TopicSkills, "Go")
		if errors.CodeOf(err) != errors.ErrCodeGatewayFailed {
			t.Fatalf("error code = %q, want %q", errors.CodeOf(err), errors.ErrCodeGatewayFailed)
		}
		if len(s.Data.Skills) != 1 {
			t.Error("answer should be recorded before judging")
		}
	})
}
