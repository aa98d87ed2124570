package conversation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resumechat/internal/errors"
	"resumechat/internal/resume"
)

func TestMatchTerm(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"Java 개발을 했습니다", "Java", true},
		{"java로 개발", "Java", true},
		{"JavaScript만 써봤어요", "Java", false},
		{"javascript로 화면 개발", "JavaScript", true},
		{"PMO 업무", "PM", false},
		{"PM으로 일했습니다", "PM", true},
		{"백엔드 개발자입니다", "백엔드", true},
		{"프론트엔드", "백엔드", false},
		{"", "Java", false},
		{"Java", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			if got := MatchTerm(tt.text, tt.term); got != tt.want {
				t.Errorf("MatchTerm(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.want)
			}
		})
	}
}

func TestKeywordTableProbe(t *testing.T) {
	table := DefaultKeywordTable()

	tests := []struct {
		name       string
		topic      resume.Topic
		texts      []string
		wantPrefix string
	}{
		{
			name:       "job backend",
			topic:      resume.TopicJobInfo,
			texts:      []string{"백엔드 개발자로 지원합니다"},
			wantPrefix: "백엔드 개발자에 대해",
		},
		{
			name:       "job devops ignores case",
			topic:      resume.TopicJobInfo,
			texts:      []string{"devops 엔지니어"},
			wantPrefix: "DevOps 엔지니어에 대해",
		},
		{
			name:       "experience joins matches in table order",
			topic:      resume.TopicExperience,
			texts:      []string{"Spring과 Java로 서버를 만들었어요"},
			wantPrefix: "Java, Spring를 사용하신 경험이",
		},
		{
			name:       "newest text wins",
			topic:      resume.TopicSkills,
			texts:      []string{"React 2년", "Python 3년"},
			wantPrefix: "React에 대해",
		},
		{
			name:       "older text is searched when newest has no hit",
			topic:      resume.TopicSkills,
			texts:      []string{"Go", "Python 3년"},
			wantPrefix: "Python에 대해",
		},
		{
			name:       "topic fallback",
			topic:      resume.TopicProjects,
			texts:      []string{"사내 정산 시스템"},
			wantPrefix: "프로젝트에 대해 더 자세히",
		},
		{
			name:       "rules follow table order",
			topic:      resume.TopicSummary,
			texts:      []string{"목표는 팀장이고 강점은 끈기입니다"},
			wantPrefix: "강점에 대해",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Probe(tt.topic, tt.texts)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("Probe() = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}

	t.Run("unknown topic uses generic fallback", func(t *testing.T) {
		got := table.Probe(resume.Topic("hobbies"), nil)
		if !strings.Contains(got, "hobbies") {
			t.Errorf("Probe() = %q, want topic name substituted", got)
		}
	})
}

func TestKeywordTableMatchRole(t *testing.T) {
	table := DefaultKeywordTable()
	if !table.MatchRole("프론트엔드 개발자") {
		t.Error("expected role match for 프론트엔드 개발자")
	}
	if !table.MatchRole("Backend Engineer") {
		t.Error("expected role match for Backend Engineer")
	}
	if table.MatchRole("Go와 Kubernetes를 주로 씁니다") {
		t.Error("unexpected role match")
	}
}

func TestParseKeywordTable(t *testing.T) {
	t.Run("overrides merge over defaults", func(t *testing.T) {
		table, err := ParseKeywordTable([]byte(`
roleTitles: ["데이터 분석가"]
probes:
  skills:
    rules:
      - terms: ["Go", "Rust"]
        joinMatches: true
        question: "{matches} 경험을 더 들려주세요."
`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !table.MatchRole("데이터 분석가입니다") || table.MatchRole("백엔드 개발자") {
			t.Error("role titles should be replaced")
		}
		if got := table.Probe(resume.TopicSkills, []string{"Go와 Rust"}); got != "Go, Rust 경험을 더 들려주세요." {
			t.Errorf("Probe() = %q", got)
		}
		if got := table.Probe(resume.TopicSkills, []string{"없음"}); !strings.HasPrefix(got, "기술 스택에 대해") {
			t.Errorf("fallback should keep its default, got %q", got)
		}
		if got := table.Probe(resume.TopicSummary, []string{"강점"}); !strings.HasPrefix(got, "강점에 대해") {
			t.Errorf("untouched topics should keep defaults, got %q", got)
		}
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "roleTitles: [unterminated"},
		{"unknown topic", "probes:\n  hobbies:\n    fallback: x\n"},
		{"rule without terms", "probes:\n  skills:\n    rules:\n      - question: x\n"},
		{"join without placeholder", "probes:\n  skills:\n    rules:\n      - terms: [Go]\n        joinMatches: true\n        question: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseKeywordTable([]byte(tt.yaml)); errors.CodeOf(err) != errors.ErrCodeInvalidFormat {
				t.Errorf("error code = %q, want %q", errors.CodeOf(err), errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestLoadKeywordTableMissing(t *testing.T) {
	_, err := LoadKeywordTable(filepath.Join(t.TempDir(), "missing.yaml"))
	if errors.CodeOf(err) != errors.ErrCodeFileNotFound {
		t.Errorf("error code = %q, want %q", errors.CodeOf(err), errors.ErrCodeFileNotFound)
	}
}

func TestStaticKeywords(t *testing.T) {
	if NewStaticKeywords(nil).Table() == nil {
		t.Fatal("nil table should fall back to defaults")
	}
	custom := &KeywordTable{RoleTitles: []string{"QA"}}
	if NewStaticKeywords(custom).Table() != custom {
		t.Error("static source should return the wrapped table")
	}
}

func TestKeywordWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("roleTitles: [\"데이터 분석가\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	kw, err := NewKeywordWatcher(path, 10*time.Millisecond, errors.Discard())
	if err != nil {
		t.Fatalf("NewKeywordWatcher() error = %v", err)
	}
	if !kw.Table().MatchRole("데이터 분석가") {
		t.Fatal("initial table not loaded")
	}

	reloaded := make(chan *KeywordTable, 1)
	kw.OnReload(func(table *KeywordTable) {
		select {
		case reloaded <- table:
		default:
		}
	})

	if err := kw.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = kw.Stop() }()
	if !kw.IsRunning() {
		t.Error("watcher should be running")
	}
	if err := kw.Start(); err == nil {
		t.Error("second Start should fail")
	}

	if err := os.WriteFile(path, []byte("roleTitles: [\"QA\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	if !kw.Table().MatchRole("QA 엔지니어") {
		t.Error("table was not swapped after reload")
	}

	// A broken file keeps the previous table
	if err := os.WriteFile(path, []byte("roleTitles: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	kw.reload()
	if !kw.Table().MatchRole("QA 엔지니어") {
		t.Error("previous table should survive a failed reload")
	}
}

func TestNewKeywordWatcherMissingFile(t *testing.T) {
	_, err := NewKeywordWatcher(filepath.Join(t.TempDir(), "nope.yaml"), 0, errors.Discard())
	if errors.CodeOf(err) != errors.ErrCodeFileNotFound {
		t.Errorf("error code = %q, want %q", errors.CodeOf(err), errors.ErrCodeFileNotFound)
	}
}
