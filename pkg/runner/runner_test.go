package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brettstark73/crewbuilder/pkg/config"
	"github.com/brettstark73/crewbuilder/pkg/httpclient"
	"github.com/brettstark73/crewbuilder/pkg/llms"
	"github.com/brettstark73/crewbuilder/pkg/store"
)

// scriptedProvider returns queued responses in order. Errors can be injected
// at specific call indices.
type scriptedProvider struct {
	responses []string
	errAt     map[int]error
	calls     int
}

func (p *scriptedProvider) Generate(_ context.Context, _ []llms.Message, _ *llms.GenerateOptions) (string, llms.Usage, error) {
	call := p.calls
	p.calls++

	if err, ok := p.errAt[call]; ok {
		return "", llms.Usage{}, err
	}

	resp := "ok"
	if call < len(p.responses) {
		resp = p.responses[call]
	}
	return resp, llms.Usage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300}, nil
}

func (p *scriptedProvider) ModelName() string    { return "scripted" }
func (p *scriptedProvider) MaxTokens() int       { return 4096 }
func (p *scriptedProvider) Temperature() float64 { return 0.3 }
func (p *scriptedProvider) Close() error         { return nil }

const twoTaskJSON = `{"tasks": [
	{"name": "Project Setup", "description": "set up files", "expected_output": "layout", "success_criteria": "exists"},
	{"name": "Core Game Implementation", "description": "build the game", "expected_output": "game", "success_criteria": "playable"}
]}`

func testConfig(t *testing.T) *config.RunnerConfig {
	t.Helper()
	cfg := &config.RunnerConfig{OutputDir: t.TempDir()}
	cfg.SetDefaults()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func newTestRunner(t *testing.T, cfg *config.RunnerConfig, provider llms.Provider, opts ...Option) (*Runner, *[]time.Duration) {
	t.Helper()
	r, err := New(cfg, provider, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	var sleeps []time.Duration
	r.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return r, &sleeps
}

func TestRun_FullPipeline(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"analysis of the game",
		twoTaskJSON,
		"Setup done.\n\n```html index.html\n<canvas></canvas>\n```\n",
		"Game logic:\n\n```js game.js\nconst score = 0;\n```\n",
	}}
	cfg := testConfig(t)
	r, sleeps := newTestRunner(t, cfg, provider)

	result, err := r.Run(context.Background(), "space invaders game", "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Status != "completed" {
		t.Errorf("status = %q, want completed", result.Status)
	}
	if len(result.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(result.Tasks))
	}
	for _, tr := range result.Tasks {
		if tr.State != TaskStateCompleted {
			t.Errorf("task %q state = %v", tr.Spec.Name, tr.State)
		}
		if tr.ID == "" {
			t.Error("task missing ID")
		}
	}
	if result.TotalTokens != 600 {
		t.Errorf("total tokens = %d, want 600", result.TotalTokens)
	}

	// One pause between the two tasks, none after the last.
	if len(*sleeps) != 1 || (*sleeps)[0] != 65*time.Second {
		t.Errorf("sleeps = %v, want one 65s pause", *sleeps)
	}

	// Artifacts plus guide, report, and record on disk.
	for _, name := range []string{"index.html", "game.js", "PROJECT_GUIDE.md"} {
		if _, err := os.Stat(filepath.Join(result.ProjectDir, name)); err != nil {
			t.Errorf("missing output file %s: %v", name, err)
		}
	}
	entries, err := os.ReadDir(result.ProjectDir)
	if err != nil {
		t.Fatal(err)
	}
	var haveReport, haveRecord bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "run_report_") {
			haveReport = true
		}
		if strings.HasPrefix(e.Name(), "run_record_") {
			haveRecord = true
		}
	}
	if !haveReport || !haveRecord {
		t.Errorf("missing report/record in %v", entries)
	}
}

func TestRun_PausesBetweenTasks(t *testing.T) {
	taskJSON := `{"tasks": [
		{"name": "A", "description": "d", "expected_output": "o", "success_criteria": "s"},
		{"name": "B", "description": "d", "expected_output": "o", "success_criteria": "s"},
		{"name": "C", "description": "d", "expected_output": "o", "success_criteria": "s"}
	]}`

	provider := &scriptedProvider{responses: []string{"analysis", taskJSON, "out a", "out b", "out c"}}
	cfg := testConfig(t)
	r, sleeps := newTestRunner(t, cfg, provider)

	result, err := r.Run(context.Background(), "a tool", "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.Tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(result.Tasks))
	}

	// The default ceiling fits all three prompts in one chunk, but the pause
	// still lands after every task except the last.
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want a pause after each task but the last", *sleeps)
	}
	for _, d := range *sleeps {
		if d != 65*time.Second {
			t.Errorf("pause = %v, want 65s", d)
		}
	}
}

func TestRun_NoPauseWhenDelayDisabled(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"analysis", twoTaskJSON, "out a", "out b"}}
	cfg := testConfig(t)
	cfg.ChunkDelay = 0
	r, sleeps := newTestRunner(t, cfg, provider)

	if _, err := r.Run(context.Background(), "a tool", "", ""); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", *sleeps)
	}
}

func TestRun_RateLimitBackoffAndRetry(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{"analysis", twoTaskJSON, "", "task one output", "task two output"},
		errAt: map[int]error{
			// First execution call hits the provider rate limit.
			2: &httpclient.RetryableError{StatusCode: 429, Message: "rate limited"},
		},
	}
	cfg := testConfig(t)
	// Disable the inter-task pause so only the backoff shows up.
	cfg.ChunkDelay = 0
	r, sleeps := newTestRunner(t, cfg, provider)

	result, err := r.Run(context.Background(), "a tool", "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Status != "completed" {
		t.Errorf("status = %q, want completed after retry", result.Status)
	}
	if result.Tasks[0].State != TaskStateCompleted {
		t.Errorf("task state = %v, want completed", result.Tasks[0].State)
	}
	if result.Tasks[0].Output != "task one output" {
		t.Errorf("task output = %q", result.Tasks[0].Output)
	}

	if len(*sleeps) != 1 || (*sleeps)[0] != 120*time.Second {
		t.Errorf("sleeps = %v, want one 120s backoff", *sleeps)
	}
}

func TestRun_NonRetryableFailureMarksTask(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{"analysis", twoTaskJSON, "", "second output"},
		errAt: map[int]error{
			2: errors.New("model unavailable"),
		},
	}
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg, provider)

	result, err := r.Run(context.Background(), "a tool", "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Status != "completed_with_errors" {
		t.Errorf("status = %q, want completed_with_errors", result.Status)
	}
	if result.Tasks[0].State != TaskStateFailed {
		t.Errorf("first task state = %v, want failed", result.Tasks[0].State)
	}
	if result.Tasks[0].Error == "" {
		t.Error("failed task has no error message")
	}
	// Remaining tasks still execute.
	if result.Tasks[1].State != TaskStateCompleted {
		t.Errorf("second task state = %v, want completed", result.Tasks[1].State)
	}
}

func TestRun_PersistsHistory(t *testing.T) {
	history, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	defer history.Close()

	provider := &scriptedProvider{responses: []string{"analysis", twoTaskJSON, "out 1", "out 2"}}
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg, provider, WithHistory(history))

	result, err := r.Run(context.Background(), "space invaders game", "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	run, err := history.GetRun(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if run.Status != "completed" {
		t.Errorf("persisted status = %q", run.Status)
	}
	if run.Archetype != "game" {
		t.Errorf("persisted archetype = %q", run.Archetype)
	}
	if run.TotalTokens != result.TotalTokens {
		t.Errorf("persisted tokens = %d, want %d", run.TotalTokens, result.TotalTokens)
	}
	if len(run.Tasks) != 2 {
		t.Errorf("persisted %d tasks, want 2", len(run.Tasks))
	}
}

func TestRun_UsesConfigDefaultsForAudienceAndTimeline(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"analysis", twoTaskJSON, "a", "b"}}
	cfg := testConfig(t)
	cfg.Audience = "kids"
	cfg.Timeline = "1 week"
	r, _ := newTestRunner(t, cfg, provider)

	result, err := r.Run(context.Background(), "a tool", "", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Analysis.Audience != "kids" || result.Analysis.Timeline != "1 week" {
		t.Errorf("analysis audience/timeline = %q/%q", result.Analysis.Audience, result.Analysis.Timeline)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Space Invaders Game!", "space-invaders-game"},
		{"  weird///chars  ", "weird-chars"},
		{"", "project"},
		{"---", "project"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
