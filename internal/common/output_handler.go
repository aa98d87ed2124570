package common

import (
	"fmt"
	"io"
	"path/filepath"

	"resumechat/internal/errors"
	"resumechat/internal/formatters"
	"resumechat/internal/resume"
	"resumechat/internal/utils"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler renders resumes and writes them to a file or the terminal
type OutputHandler struct {
	fileProcessor *FileProcessor
	out           io.Writer
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler writing to out when no file is given
func NewOutputHandler(logger *errors.Logger, out io.Writer) *OutputHandler {
	if logger == nil {
		logger = errors.Discard()
	}
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		out:           out,
		logger:        logger,
	}
}

// HandleOutput renders data in the configured format and writes it
func (oh *OutputHandler) HandleOutput(data resume.Data, config CommandConfig) error {
	output, err := formatters.Assemble(data, config.OutputFormat)
	if err != nil {
		return err
	}

	if config.OutputFile == "" {
		_, err := fmt.Fprint(oh.out, output)
		return err
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
		return err
	}

	oh.logger.Info("Output written successfully",
		"file", config.OutputFile, "format", config.OutputFormat)
	return nil
}

// SaveResume writes data into dir under a file named after the applicant
// and returns the path written
func (oh *OutputHandler) SaveResume(data resume.Data, dir, format string) (string, error) {
	name := utils.ResumeFileName(data.BasicInfo.Name, formatters.FileExtension(format))
	path := filepath.Join(dir, name)
	if err := oh.HandleOutput(data, CommandConfig{OutputFile: path, OutputFormat: format}); err != nil {
		return "", err
	}
	return path, nil
}
