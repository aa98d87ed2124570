package common

import (
	"testing"

	"resumechat/internal/errors"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedMessage  string
	}{
		{
			name:             "valid format - text",
			format:           "text",
			supportedFormats: []string{"text", "markdown", "json"},
			expectError:      false,
		},
		{
			name:             "valid format - markdown",
			format:           "markdown",
			supportedFormats: []string{"text", "markdown", "json"},
			expectError:      false,
		},
		{
			name:             "invalid format - pdf",
			format:           "pdf",
			supportedFormats: []string{"text", "markdown", "json"},
			expectError:      true,
			expectedMessage:  "unsupported output format 'pdf'. Supported formats: [text markdown json]",
		},
		{
			name:             "case sensitive - TEXT uppercase",
			format:           "TEXT",
			supportedFormats: []string{"text", "markdown", "json"},
			expectError:      true,
			expectedMessage:  "unsupported output format 'TEXT'. Supported formats: [text markdown json]",
		},
		{
			name:             "empty supported formats - should allow all",
			format:           "xml",
			supportedFormats: []string{},
			expectError:      false,
		},
		{
			name:             "single supported format - invalid",
			format:           "json",
			supportedFormats: []string{"text"},
			expectError:      true,
			expectedMessage:  "unsupported output format 'json'. Supported formats: [text]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)

			if !tt.expectError {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}

			appErr, ok := errors.As(err)
			if !ok {
				t.Fatalf("Expected an AppError, got %v", err)
			}
			if appErr.Code != errors.ErrCodeInvalidFormat {
				t.Errorf("Expected code %s, got %s", errors.ErrCodeInvalidFormat, appErr.Code)
			}
			if appErr.Message != tt.expectedMessage {
				t.Errorf("Expected message '%s', got '%s'", tt.expectedMessage, appErr.Message)
			}
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	supported := []string{"text", "markdown", "json"}

	tests := []struct {
		name      string
		requested string
		want      string
		wantErr   bool
	}{
		{"empty uses default", "", "text", false},
		{"normalized", " Markdown ", "markdown", false},
		{"unsupported", "docx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputFormat(tt.requested, "text", supported)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveOutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"text", "markdown", "json"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}
