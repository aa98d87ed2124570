package cli

import (
	"fmt"
	"io"

	"resumechat/internal/common"
	"resumechat/internal/formatters"
	"resumechat/internal/resume"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [resume-file]",
	Short: "Check a downloaded resume for missing sections",
	Long: `Parse a resume saved in the text format and report which sections are
still missing. Name, email and job title are required; the rest is advisory.

With --format the parsed resume can be converted to markdown or json.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if inspectConfig.OutputFormat == "" {
			return nil
		}
		cfg := getConfigFromContext(cmd.Context())
		return common.ValidateOutputFormat(inspectConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runInspect,
}

var inspectConfig common.CommandConfig

func init() {
	inspectCmd.Flags().StringVarP(&inspectConfig.OutputFile, "output", "o", "", "Output file path for the converted resume (default: stdout)")
	inspectCmd.Flags().StringVar(&inspectConfig.OutputFormat, "format", "", "Convert the resume to: text, markdown or json")

	_ = inspectCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runInspect(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	content, err := common.NewFileProcessor(logger).ReadResumeFile(args[0])
	if err != nil {
		return err
	}

	data, err := formatters.ParseText(content)
	if err != nil {
		return err
	}

	missing := resume.Validate(data)
	logger.Info("Resume inspected",
		"file", args[0],
		"missing", len(missing),
		"blocking", len(resume.Blocking(missing)))

	out := cmd.OutOrStdout()
	printInspection(out, data, missing)

	if inspectConfig.OutputFormat == "" {
		return nil
	}
	return common.NewOutputHandler(logger, out).HandleOutput(data, inspectConfig)
}

func printInspection(out io.Writer, data resume.Data, missing []string) {
	fmt.Fprintf(out, "이름: %s\n", data.BasicInfo.Name)
	fmt.Fprintf(out, "경력 %d건, 프로젝트 %d건, 기술 %d개\n",
		len(data.Experience), len(data.Projects), len(data.Skills))

	if len(missing) == 0 {
		fmt.Fprintln(out, "✅ 모든 항목이 작성되었습니다.")
		return
	}
	fmt.Fprintln(out, "⚠️  "+resume.MissingAdvisory(missing))
	if blocking := resume.Blocking(missing); len(blocking) > 0 {
		fmt.Fprintf(out, "필수 항목 누락: %v\n", blocking)
	}
}
