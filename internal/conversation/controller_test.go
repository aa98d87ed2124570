package conversation

import (
	"context"
	"strings"
	"testing"

	"resumechat/internal/config"
	"resumechat/internal/errors"
	"resumechat/internal/formatters"
	"resumechat/internal/resume"
)

func newTestController() *Controller {
	return NewController(resume.DefaultSchema(), NewTurnCountEvaluator(nil, 2), nil, errors.Discard(), nil)
}

func mustSubmit(t *testing.T, c *Controller, s *Session, utterances ...string) Result {
	t.Helper()
	var res Result
	for _, u := range utterances {
		var err error
		res, err = c.Submit(context.Background(), s, u)
		if err != nil {
			t.Fatalf("Submit(%q) error = %v", u, err)
		}
	}
	return res
}

func mustConfirm(t *testing.T, c *Controller, s *Session) Result {
	t.Helper()
	res, err := c.Confirm(context.Background(), s)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	return res
}

func TestControllerFullConversation(t *testing.T) {
	ctx := context.Background()
	c := newTestController()
	s := c.Start("session-1")

	res, err := c.SubmitBasicInfo(ctx, s, resume.BasicInfo{Name: "홍길동", Email: "hong@example.com", Phone: "010-1234-5678"})
	if err != nil {
		t.Fatalf("SubmitBasicInfo() error = %v", err)
	}
	if res.Step != 2 || len(res.Turns) != 1 || res.NextAction != ActionAskJobTitle {
		t.Fatalf("unexpected result after basic info: %+v", res)
	}

	res = mustSubmit(t, c, s, "백엔드 개발자")
	if res.AwaitingConfirmation || len(res.Turns) != 2 || res.NextAction != ActionAskFollowup {
		t.Fatalf("role answer should be bridged: %+v", res)
	}
	if res.Turns[0].Speaker != SpeakerUser || res.Turns[1].Speaker != SpeakerBot {
		t.Errorf("user turn should come first: %+v", res.Turns)
	}

	mustSubmit(t, c, s, "Go와 Kubernetes")
	res = mustSubmit(t, c, s, "MSA 설계 경험")
	if !res.AwaitingConfirmation || res.ConfirmPrompt != ConfirmPrompt || len(res.Turns) != 1 {
		t.Fatalf("job topic should be pending confirmation: %+v", res)
	}
	mustConfirm(t, c, s)

	mustSubmit(t, c, s, "A사 백엔드 3년", "결제 시스템 개편")
	mustConfirm(t, c, s)
	mustSubmit(t, c, s, "정산 자동화 프로젝트", "처리 시간 80% 단축")
	mustConfirm(t, c, s)
	mustSubmit(t, c, s, "Go", "Kubernetes")
	mustConfirm(t, c, s)
	mustSubmit(t, c, s, "꾸준히 성장하는 개발자입니다", "팀과 함께 문제를 해결합니다")
	res = mustConfirm(t, c, s)

	if !res.Done || res.Step != resume.StepReview || res.NextAction != ActionShowResume {
		t.Fatalf("conversation should end at review: %+v", res)
	}
	if len(res.Turns) != 0 {
		t.Errorf("review step should emit no turns, got %d", len(res.Turns))
	}
	if _, err := c.Submit(ctx, s, "한 마디 더"); errors.CodeOf(err) != errors.ErrCodeInvalidTransition {
		t.Errorf("chat after review: error code = %q", errors.CodeOf(err))
	}

	review := c.Review(ctx, s, formatters.FormatMarkdown)
	if len(review.Missing) != 0 || review.Advisory != "" {
		t.Errorf("nothing should be missing: %+v", review.Missing)
	}
	if review.Error != "" {
		t.Fatalf("review error = %q", review.Error)
	}
	for _, want := range []string{"홍길동", "백엔드 개발자", "- Go", "정산 자동화 프로젝트"} {
		if !strings.Contains(review.Document, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if s.Data.Skills[0] != "- Go" || s.Data.Skills[1] != "- Kubernetes" {
		t.Errorf("Skills = %v", s.Data.Skills)
	}
}

func TestControllerSubmitRejections(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	tests := []struct {
		name      string
		setup     func(s *Session)
		utterance string
		wantCode  string
	}{
		{
			name:      "empty utterance",
			setup:     func(s *Session) { s.enter(2) },
			utterance: "   ",
			wantCode:  errors.ErrCodeEmptyUtterance,
		},
		{
			name: "busy session",
			setup: func(s *Session) {
				s.enter(2)
				s.Processing = true
			},
			utterance: "백엔드",
			wantCode:  errors.ErrCodeSessionBusy,
		},
		{
			name:      "basic info step",
			setup:     func(*Session) {},
			utterance: "안녕하세요",
			wantCode:  errors.ErrCodeInvalidTransition,
		},
		{
			name: "policy mismatch",
			setup: func(s *Session) {
				s.enter(2)
				s.Policy = config.PolicyPerField
			},
			utterance: "백엔드",
			wantCode:  errors.ErrCodePolicyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := c.Start("s1")
			tt.setup(s)
			before := len(s.History)

			_, err := c.Submit(ctx, s, tt.utterance)
			if errors.CodeOf(err) != tt.wantCode {
				t.Fatalf("error code = %q, want %q", errors.CodeOf(err), tt.wantCode)
			}
			if len(s.History) != before {
				t.Error("rejected utterance must not be recorded")
			}
		})
	}
}

func TestControllerGatewayFailureBecomesTurn(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{err: errors.NewAIError(errors.ErrCodeGatewayFailed, "model unavailable", nil)}
	c := NewController(resume.DefaultSchema(), NewFieldEvaluator(resume.DefaultSchema(), judge), nil, errors.Discard(), nil)

	s := c.Start("s1")
	if s.Policy != config.PolicyPerField {
		t.Fatalf("Policy = %q", s.Policy)
	}
	s.enter(resume.TopicSkills.Step())

	res, err := c.Submit(ctx, s, "Go")
	if err != nil {
		t.Fatalf("gateway failure should not be returned: %v", err)
	}
	if len(res.Turns) != 2 {
		t.Fatalf("expected user turn and error turn, got %+v", res.Turns)
	}
	if got := res.Turns[1].Text; got != ErrorTurnText("model unavailable") {
		t.Errorf("error turn = %q", got)
	}
	if s.Processing {
		t.Error("Processing must be cleared after a failure")
	}

	judge.err = nil
	if _, err := c.Submit(ctx, s, "Python"); err != nil {
		t.Errorf("session should stay usable: %v", err)
	}
}

func TestControllerPendingUtterance(t *testing.T) {
	c := newTestController()
	s := c.Start("s1")
	s.enter(resume.TopicSkills.Step())

	res := mustSubmit(t, c, s, "Python", "Go")
	if !res.AwaitingConfirmation {
		t.Fatal("skills should be pending confirmation")
	}

	res = mustSubmit(t, c, s, "Docker")
	if !res.AwaitingConfirmation || len(res.Turns) != 1 {
		t.Errorf("extra answer should stay pending with no bot turn: %+v", res)
	}
	if len(s.Data.Skills) != 3 {
		t.Errorf("extra answer should still be recorded: %v", s.Data.Skills)
	}
}

func TestControllerDecline(t *testing.T) {
	ctx := context.Background()
	c := newTestController()
	s := c.Start("s1")
	s.enter(resume.TopicSkills.Step())

	if _, err := c.Decline(ctx, s); errors.CodeOf(err) != errors.ErrCodeInvalidTransition {
		t.Fatalf("decline without pending step: error code = %q", errors.CodeOf(err))
	}

	mustSubmit(t, c, s, "Python 3년", "Go")
	res, err := c.Decline(ctx, s)
	if err != nil {
		t.Fatalf("Decline() error = %v", err)
	}
	if res.AwaitingConfirmation || res.NextAction != ActionAskMoreInfo || res.Step != resume.TopicSkills.Step() {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.Turns) != 1 || !strings.HasPrefix(res.Turns[0].Text, "Python에 대해") {
		t.Errorf("probe = %+v", res.Turns)
	}
	if s.QuestionCount[resume.TopicSkills] != 2 {
		t.Errorf("QuestionCount = %d, want 2", s.QuestionCount[resume.TopicSkills])
	}
}

func TestControllerEditAndRestart(t *testing.T) {
	ctx := context.Background()
	c := newTestController()
	s := c.Start("s1")
	if _, err := c.SubmitBasicInfo(ctx, s, resume.BasicInfo{Name: "홍길동", Email: "a@b.com"}); err != nil {
		t.Fatal(err)
	}
	mustSubmit(t, c, s, "Go", "Kubernetes")
	mustConfirm(t, c, s)

	step, ok := StepForSection("job_info")
	if !ok {
		t.Fatal("job_info should map to a step")
	}
	res, err := c.Edit(ctx, s, step)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if res.Step != 2 || len(res.Turns) != 1 {
		t.Errorf("edit should re-enter job topic with its intro: %+v", res)
	}
	if len(s.Data.JobInfo.Answers) != 2 {
		t.Error("edit must keep collected answers")
	}

	res = c.Restart(ctx, s)
	if res.Step != resume.StepBasicInfo || s.ID != "s1" || len(s.History) != 0 {
		t.Errorf("restart should wipe state but keep id: %+v", res)
	}
}

func TestStepForSection(t *testing.T) {
	tests := []struct {
		section string
		want    int
		ok      bool
	}{
		{"basic_info", 1, true},
		{"job_info", 2, true},
		{"Experience", 3, true},
		{" projects ", 4, true},
		{"skills", 5, true},
		{"summary", 6, true},
		{"review", 0, false},
	}
	for _, tt := range tests {
		got, ok := StepForSection(tt.section)
		if got != tt.want || ok != tt.ok {
			t.Errorf("StepForSection(%q) = %d, %v; want %d, %v", tt.section, got, ok, tt.want, tt.ok)
		}
	}
}

func TestControllerReview(t *testing.T) {
	ctx := context.Background()
	c := newTestController()

	t.Run("missing title still renders", func(t *testing.T) {
		s := c.Start("s1")
		s.Data.BasicInfo = resume.BasicInfo{Name: "홍길동", Email: "a@b.com"}

		review := c.Review(ctx, s, "")
		if review.Format != formatters.FormatText {
			t.Errorf("Format = %q", review.Format)
		}
		if len(review.Blocking) != 1 || review.Blocking[0] != resume.MissingTitle {
			t.Errorf("Blocking = %v", review.Blocking)
		}
		if !strings.HasPrefix(review.Advisory, "다음 항목이 누락되었습니다:") {
			t.Errorf("Advisory = %q", review.Advisory)
		}
		if !strings.Contains(review.Document, "미입력") {
			t.Error("document should carry the not-entered placeholder")
		}
	})

	t.Run("unsupported format is reported", func(t *testing.T) {
		s := c.Start("s1")
		review := c.Review(ctx, s, "pdf")
		if review.Error == "" || review.Document != "" {
			t.Errorf("expected a reported error, got %+v", review)
		}
	})
}
