package common

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"resumechat/internal/errors"
	"resumechat/internal/utils"
)

// FileProcessor reads saved resumes and writes rendered ones
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger}
}

// ReadFile returns the whole file as a string
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return "", errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("File not found: %s", filename), err)
	case err != nil:
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}

	fp.logger.Debug("File read", "filename", filename, "size", utils.FormatFileSize(int64(len(content))))
	return string(content), nil
}

// ReadResumeFile reads a resume saved in the text format. Files that are
// missing, oversized or not UTF-8 are rejected.
func (fp *FileProcessor) ReadResumeFile(filename string) (string, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidInputFile,
			fmt.Sprintf("Invalid file %s", filename), err)
	}
	if !utils.IsTextFile(filename) {
		fp.logger.Warn("File may not be a text file", "filename", filename)
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(content) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidInputFile,
			fmt.Sprintf("File %s is not UTF-8 text", filename), nil)
	}
	return content, nil
}

// WriteFile writes content to a file, creating its directory
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.WriteOutputFile(filename, content); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	fp.logger.Debug("File written", "filename", filename)
	return nil
}
