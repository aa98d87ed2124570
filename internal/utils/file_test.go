package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResumeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ext  string
		want string
	}{
		{"korean name", "홍길동", ".txt", "홍길동.txt"},
		{"spaces become underscores", " Gil Dong Hong ", ".md", "Gil_Dong_Hong.md"},
		{"path separators dropped", "../etc/passwd", ".json", "etcpasswd.json"},
		{"empty falls back", "", ".txt", "resume.txt"},
		{"only unsafe characters", "/\\:*?", ".md", "resume.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResumeFileName(tt.in, tt.ext); got != tt.want {
				t.Errorf("ResumeFileName(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.want)
			}
		})
	}
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(file, []byte("[인적사항]"), 0600); err != nil {
		t.Fatal(err)
	}
	large := filepath.Join(dir, "large.txt")
	if err := os.WriteFile(large, make([]byte, MaxResumeFileSize+1), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"readable file", file, false},
		{"empty name", "", true},
		{"missing file", filepath.Join(dir, "missing.txt"), true},
		{"directory", dir, true},
		{"too large", large, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateInputFile(tt.path); (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestWriteOutputFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "resume.md")
	if err := WriteOutputFile(path, "# 이력서"); err != nil {
		t.Fatalf("WriteOutputFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# 이력서" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteOutputFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	for _, content := range []string{"first draft", "final"} {
		if err := WriteOutputFile(path, content); err != nil {
			t.Fatalf("WriteOutputFile() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "final" {
		t.Errorf("content = %q, want final", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestIsTextFile(t *testing.T) {
	for file, want := range map[string]bool{
		"resume.txt": true,
		"resume.MD":  true,
		"resume.pdf": false,
		"resume":     false,
	} {
		if got := IsTextFile(file); got != want {
			t.Errorf("IsTextFile(%q) = %v, want %v", file, got, want)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for size, want := range tests {
		if got := FormatFileSize(size); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", size, got, want)
		}
	}
}
