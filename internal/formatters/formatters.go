package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"resumechat/internal/errors"
	"resumechat/internal/resume"
)

// Output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter(FormatJSON, "any", &JSONFormatter{})
	registry.RegisterFormatter(FormatJSON, "Resume", &ResumeJSONFormatter{})
	registry.RegisterFormatter(FormatText, "Resume", &ResumeTextFormatter{})
	registry.RegisterFormatter(FormatMarkdown, "Resume", &ResumeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter.
// Unknown data types fall back to the format's "Resume" formatter, which rejects them.
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["Resume"]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case resume.Data, *resume.Data:
		return "Resume"
	default:
		return "any"
	}
}

func asResume(data any) (resume.Data, error) {
	switch d := data.(type) {
	case resume.Data:
		return d, nil
	case *resume.Data:
		if d == nil {
			return resume.Data{}, fmt.Errorf("expected resume.Data, got nil pointer")
		}
		return *d, nil
	default:
		return resume.Data{}, fmt.Errorf("expected resume.Data, got %T", data)
	}
}

var defaultRegistry = NewFormatterRegistry()

// SupportedFormats lists the formats Assemble can render
func SupportedFormats() []string {
	return defaultRegistry.GetSupportedFormats()
}

// Render produces the canonical text document
func Render(data resume.Data) (string, error) {
	return Assemble(data, FormatText)
}

// Assemble formats data in the given format. Any formatter failure, including a
// panic, comes back as an assembly error and never escapes to the caller.
func Assemble(data any, format string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = errors.NewAssemblyError(errors.ErrCodeAssemblyFailed,
				"resume rendering failed", fmt.Errorf("panic: %v", r)).
				WithContext("format", format)
		}
	}()

	if _, ok := defaultRegistry.formatters[format]; !ok {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported output format '%s'", format), nil).
			WithContext("format", format)
	}

	out, err = defaultRegistry.Format(data, format)
	if err != nil {
		return "", errors.NewAssemblyError(errors.ErrCodeAssemblyFailed, "resume rendering failed", err).
			WithContext("format", format)
	}
	return out, nil
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// resumeView is the flat JSON shape of a resume
type resumeView struct {
	BasicInfo  resume.BasicInfo  `json:"basic_info"`
	JobInfo    map[string]string `json:"job_info"`
	Summary    []string          `json:"summary"`
	Experience []string          `json:"experience"`
	Projects   []string          `json:"projects"`
	Skills     []string          `json:"skills"`
}

// ResumeJSONFormatter renders the flat resume view as indented JSON
type ResumeJSONFormatter struct{}

func (rjf *ResumeJSONFormatter) Format(data any) (string, error) {
	d, err := asResume(data)
	if err != nil {
		return "", err
	}
	view := resumeView{
		BasicInfo:  d.BasicInfo,
		JobInfo:    d.JobInfo.Fields(),
		Summary:    nonNil(d.Summary),
		Experience: nonNil(d.Experience),
		Projects:   nonNil(d.Projects),
		Skills:     nonNil(d.Skills),
	}
	return (&JSONFormatter{}).Format(view)
}

func (rjf *ResumeJSONFormatter) SupportedType() string {
	return "Resume"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FileExtension returns the download extension for a format
func FileExtension(format string) string {
	switch format {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// ContentType returns the download MIME type for a format
func ContentType(format string) string {
	switch format {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}
