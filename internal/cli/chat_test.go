package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resumechat/internal/conversation"
	"resumechat/internal/errors"
	"resumechat/internal/resume"
	"resumechat/internal/session"
)

func newTestShell(t *testing.T, script ...string) (*chatShell, *bytes.Buffer) {
	t.Helper()
	logger := errors.Discard()
	controller := conversation.NewController(resume.DefaultSchema(),
		conversation.NewTurnCountEvaluator(nil, 1), nil, logger, nil)
	sessions := session.NewManager(session.NewMemoryStore(time.Hour, logger), controller, logger)
	t.Cleanup(func() { _ = sessions.Close() })

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	shell := newChatShell(context.Background(), in, &out, controller, sessions, logger)
	shell.outputDir = t.TempDir()
	return shell, &out
}

func TestChatShellFullConversation(t *testing.T) {
	shell, out := newTestShell(t,
		// basic info, with one invalid email re-asked on its own
		"홍길동", "invalid", "", "",
		"hong@example.com",
		// job info: title bridge, one answer, decline, one more answer
		"백엔드 개발자", "Go 개발", "n", "결제 시스템", "y",
		"A사 3년 근무", "y",
		"쇼핑몰 구축", "y",
		"Python", "y",
		"꼼꼼한 성격", "y",
		"/quit",
	)

	if err := shell.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	output := out.String()
	for _, want := range []string{
		resume.MsgInvalidEmail,
		"안녕하세요 홍길동님",
		"백엔드 개발자로 지원하시는군요",
		conversation.ConfirmPrompt,
		"백엔드 개발자에 대해 더 자세히",
		"[3/7] 경력 상세화",
		"📄 이력서 (text)",
		"💾 이력서를 저장했습니다",
		"👋 대화를 종료합니다.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output is missing %q", want)
		}
	}
	if strings.Count(output, "전화번호 (선택): ") != 1 {
		t.Errorf("only the failing field should be asked again:\n%s", output)
	}

	saved, err := os.ReadFile(filepath.Join(shell.outputDir, "홍길동.txt"))
	if err != nil {
		t.Fatalf("resume was not saved: %v", err)
	}
	for _, want := range []string{"백엔드 개발자", "A사 3년 근무", "- Python", "꼼꼼한 성격"} {
		if !strings.Contains(string(saved), want) {
			t.Errorf("saved resume is missing %q:\n%s", want, saved)
		}
	}
}

func TestChatShellCommands(t *testing.T) {
	shell, out := newTestShell(t,
		"홍길동", "hong@example.com", "", "",
		"/help",
		"/edit hobbies",
		"/edit 5",
		"/resume markdown",
		"/bogus",
		"/restart",
		"/quit",
	)

	if err := shell.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"/edit <section|step>",
		"알 수 없는 섹션입니다: hobbies",
		"edit target 5",
		"# 홍길동 이력서",
		"알 수 없는 명령어입니다: /bogus",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output is missing %q\n%s", want, output)
		}
	}

	// restart returns to the basic-info form
	if strings.Count(output, "[기본 정보]") != 2 {
		t.Errorf("expected the basic-info form twice:\n%s", output)
	}
}

func TestChatShellEndOfInput(t *testing.T) {
	shell, out := newTestShell(t, "홍길동")

	if err := shell.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), "👋 대화를 종료합니다.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
