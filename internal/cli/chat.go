package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"resumechat/internal/common"
	"resumechat/internal/conversation"
	"resumechat/internal/errors"
	"resumechat/internal/formatters"
	"resumechat/internal/resume"
	"resumechat/internal/session"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Write a resume through a guided conversation in the terminal",
	Long: `Start an interactive resume conversation in the terminal.

You are asked for your name, email, phone and portfolio first, then led through
five topics: job title, experience, projects, skills and a short introduction.
When a topic has enough detail you are asked whether to move on (y/n).

Commands available during the conversation:
  /edit <section|step>  go back to an earlier section (basic_info, job_info,
                        experience, projects, skills, summary) or step number
  /resume [format]      show the resume assembled so far
  /restart              discard everything and start over
  /help                 show this list
  /quit                 leave the conversation

The finished resume is written to --output-dir, named after you.`,
	RunE: runChat,
}

var chatOptions struct {
	format    string
	outputDir string
}

func init() {
	chatCmd.Flags().StringVar(&chatOptions.format, "format", "", "Format of the saved resume: text, markdown or json")
	chatCmd.Flags().StringVarP(&chatOptions.outputDir, "output-dir", "o", "", "Directory the finished resume is written to (default from config)")

	_ = chatCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())

	format, err := common.ResolveOutputFormat(chatOptions.format, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
	if err != nil {
		return err
	}
	outputDir := chatOptions.outputDir
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}

	// Logs go to stderr so they do not interleave with the conversation
	logger, err := errors.NewWithWriter(cfg.App.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close(cmd.Context())

	sessions := session.NewManager(session.NewMemoryStore(cfg.Session.TTL, logger), rt.controller, logger)
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.LogError(err, "Failed to close session store")
		}
	}()

	shell := newChatShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), rt.controller, sessions, logger)
	shell.format = format
	shell.outputDir = outputDir
	return shell.run()
}

// chatShell is the terminal front end of one conversation
type chatShell struct {
	ctx        context.Context
	in         *bufio.Scanner
	out        io.Writer
	controller *conversation.Controller
	sessions   *session.Manager
	output     *common.OutputHandler
	logger     *errors.Logger

	format      string
	outputDir   string
	id          string
	reviewShown bool
}

func newChatShell(ctx context.Context, in io.Reader, out io.Writer, controller *conversation.Controller, sessions *session.Manager, logger *errors.Logger) *chatShell {
	return &chatShell{
		ctx:        ctx,
		in:         bufio.NewScanner(in),
		out:        out,
		controller: controller,
		sessions:   sessions,
		output:     common.NewOutputHandler(logger, out),
		logger:     logger,
		format:     "text",
		outputDir:  ".",
	}
}

type basicInfoPrompt struct {
	field  string
	label  string
	assign func(*resume.BasicInfo, string)
}

var basicInfoPrompts = []basicInfoPrompt{
	{"name", "이름", func(b *resume.BasicInfo, v string) { b.Name = v }},
	{"email", "이메일", func(b *resume.BasicInfo, v string) { b.Email = v }},
	{"phone", "전화번호 (선택)", func(b *resume.BasicInfo, v string) { b.Phone = v }},
	{"portfolio", "포트폴리오 URL (선택)", func(b *resume.BasicInfo, v string) { b.Portfolio = v }},
}

// run drives the conversation until /quit, end of input or cancellation
func (sh *chatShell) run() error {
	sess, err := sh.sessions.Create(sh.ctx)
	if err != nil {
		return err
	}
	sh.id = sess.ID

	sh.println("📝 이력서 작성 도우미입니다. 명령어 목록은 /help 를 입력하세요.")

	for {
		if err := sh.ctx.Err(); err != nil {
			return nil
		}

		sess, err := sh.sessions.Get(sh.ctx, sh.id)
		if err != nil {
			return err
		}

		var more bool
		switch {
		case sess.Step == resume.StepBasicInfo:
			more, err = sh.collectBasicInfo()
		case sess.Done():
			more, err = sh.review(sess)
		case sess.AwaitingConfirm:
			more, err = sh.confirm()
		default:
			more, err = sh.chat()
		}
		if err != nil {
			return err
		}
		if !more {
			sh.println("👋 대화를 종료합니다.")
			return nil
		}
	}
}

// collectBasicInfo asks one field at a time and re-asks only the field that failed
func (sh *chatShell) collectBasicInfo() (bool, error) {
	sh.println("\n[기본 정보]")

	var info resume.BasicInfo
	pending := basicInfoPrompts
	for {
		for _, p := range pending {
			line, ok := sh.prompt(p.label + ": ")
			if !ok || isQuit(line) {
				return false, nil
			}
			p.assign(&info, line)
		}

		result, err := sh.apply(func(ctx context.Context, s *conversation.Session) (conversation.Result, error) {
			return sh.controller.SubmitBasicInfo(ctx, s, info)
		})
		if err == nil {
			sh.printResult(result)
			return true, nil
		}

		appErr, ok := errors.As(err)
		if !ok || appErr.Code != errors.ErrCodeInvalidBasicInfo {
			return false, err
		}
		sh.println("⚠️  " + appErr.Message)
		pending = promptsFor(appErr)
	}
}

func promptsFor(appErr *errors.AppError) []basicInfoPrompt {
	field, _ := appErr.Context["field"].(string)
	for _, p := range basicInfoPrompts {
		if p.field == field {
			return []basicInfoPrompt{p}
		}
	}
	return basicInfoPrompts
}

// chat reads one utterance or command for the active topic
func (sh *chatShell) chat() (bool, error) {
	line, ok := sh.prompt("> ")
	if !ok {
		return false, nil
	}
	if isCommand(line) {
		return sh.command(line)
	}

	result, err := sh.apply(func(ctx context.Context, s *conversation.Session) (conversation.Result, error) {
		return sh.controller.Submit(ctx, s, line)
	})
	if err != nil {
		sh.printError(err)
		return true, nil
	}
	sh.printResult(result)
	return true, nil
}

// confirm asks whether to move on from a completed topic
func (sh *chatShell) confirm() (bool, error) {
	line, ok := sh.prompt(conversation.ConfirmPrompt + " (y/n) ")
	if !ok {
		return false, nil
	}
	if isCommand(line) {
		return sh.command(line)
	}

	var event func(context.Context, *conversation.Session) (conversation.Result, error)
	switch strings.ToLower(line) {
	case "y", "yes", "네", "예", "응":
		event = sh.controller.Confirm
	case "n", "no", "아니오", "아니요", "아니":
		event = sh.controller.Decline
	default:
		// Anything else is more detail for the current topic
		result, err := sh.apply(func(ctx context.Context, s *conversation.Session) (conversation.Result, error) {
			return sh.controller.Submit(ctx, s, line)
		})
		if err != nil {
			sh.printError(err)
			return true, nil
		}
		sh.printResult(result)
		return true, nil
	}

	result, err := sh.apply(event)
	if err != nil {
		sh.printError(err)
		return true, nil
	}
	sh.printResult(result)
	return true, nil
}

// review shows the finished resume once, saves it and then waits for a command
func (sh *chatShell) review(sess *conversation.Session) (bool, error) {
	if !sh.reviewShown {
		sh.reviewShown = true
		review := sh.controller.Review(sh.ctx, sess, sh.format)
		sh.printReview(review)

		if review.Error == "" {
			path, err := sh.output.SaveResume(sess.Data, sh.outputDir, sh.format)
			if err != nil {
				sh.printError(err)
			} else {
				sh.println("💾 이력서를 저장했습니다: " + path)
			}
		}
		sh.println("수정하려면 /edit <섹션>, 처음부터 다시 하려면 /restart, 끝내려면 /quit 을 입력하세요.")
	}

	line, ok := sh.prompt("> ")
	if !ok {
		return false, nil
	}
	if isCommand(line) {
		return sh.command(line)
	}
	sh.println("이력서가 완성되었습니다. 명령어 목록은 /help 를 입력하세요.")
	return true, nil
}

// command runs a slash command and reports whether the shell should continue
func (sh *chatShell) command(line string) (bool, error) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return false, nil

	case "help":
		sh.println("/edit <section|step>, /resume [format], /restart, /help, /quit")

	case "restart":
		result, err := sh.apply(func(ctx context.Context, s *conversation.Session) (conversation.Result, error) {
			return sh.controller.Restart(ctx, s), nil
		})
		if err != nil {
			return false, err
		}
		sh.reviewShown = false
		sh.printResult(result)

	case "edit":
		step, ok := conversation.StepForSection(arg)
		if !ok {
			n, err := strconv.Atoi(arg)
			if err != nil {
				sh.println("⚠️  알 수 없는 섹션입니다: " + arg)
				return true, nil
			}
			step = n
		}
		result, err := sh.apply(func(ctx context.Context, s *conversation.Session) (conversation.Result, error) {
			return sh.controller.Edit(ctx, s, step)
		})
		if err != nil {
			sh.printError(err)
			return true, nil
		}
		sh.reviewShown = false
		sh.printResult(result)

	case "resume":
		format, err := common.ResolveOutputFormat(arg, sh.format, formatters.SupportedFormats())
		if err != nil {
			sh.printError(err)
			return true, nil
		}
		sess, err := sh.sessions.Get(sh.ctx, sh.id)
		if err != nil {
			return false, err
		}
		sh.printReview(sh.controller.Review(sh.ctx, sess, format))

	default:
		sh.println("⚠️  알 수 없는 명령어입니다: /" + name)
	}
	return true, nil
}

// apply runs one event against the stored session
func (sh *chatShell) apply(fn func(context.Context, *conversation.Session) (conversation.Result, error)) (conversation.Result, error) {
	var result conversation.Result
	_, err := sh.sessions.Update(sh.ctx, sh.id, func(s *conversation.Session) error {
		var err error
		result, err = fn(sh.ctx, s)
		return err
	})
	return result, err
}

func (sh *chatShell) prompt(label string) (string, bool) {
	fmt.Fprint(sh.out, label)
	if !sh.in.Scan() {
		if err := sh.in.Err(); err != nil {
			sh.logger.LogError(err, "Failed to read input")
		}
		return "", false
	}
	return strings.TrimSpace(sh.in.Text()), true
}

func (sh *chatShell) printResult(result conversation.Result) {
	for _, turn := range result.Turns {
		if turn.Speaker == conversation.SpeakerBot {
			sh.println("\n🤖 " + turn.Text + "\n")
		}
	}
	if result.Step > resume.StepBasicInfo && !result.Done {
		p := result.Progress
		sh.println(fmt.Sprintf("[%d/%d] %s", p.Step, p.Total, p.Name))
	}
}

func (sh *chatShell) printReview(review conversation.Review) {
	if review.Error != "" {
		sh.println("⚠️  " + conversation.ErrorTurnText(review.Error))
		return
	}
	sh.println("\n📄 이력서 (" + review.Format + ")\n")
	sh.println(review.Document)
	if review.Advisory != "" {
		sh.println("⚠️  " + review.Advisory)
		sh.println("   /edit basic_info 로 돌아가 누락된 항목을 채울 수 있어요.")
	}
}

func (sh *chatShell) printError(err error) {
	if appErr, ok := errors.As(err); ok {
		sh.println("⚠️  " + appErr.Message)
		return
	}
	sh.println("⚠️  " + err.Error())
}

func (sh *chatShell) println(text string) {
	fmt.Fprintln(sh.out, text)
}

func isCommand(line string) bool {
	return strings.HasPrefix(line, "/")
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "/quit", "/exit", "/q":
		return true
	}
	return false
}
