// Package runner executes designed task plans against an LLM provider in
// token-budgeted chunks and writes the resulting project artifacts.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brettstark73/crewbuilder/pkg/config"
	"github.com/brettstark73/crewbuilder/pkg/designer"
	"github.com/brettstark73/crewbuilder/pkg/httpclient"
	"github.com/brettstark73/crewbuilder/pkg/llms"
	"github.com/brettstark73/crewbuilder/pkg/metrics"
	"github.com/brettstark73/crewbuilder/pkg/project"
	"github.com/brettstark73/crewbuilder/pkg/ratelimit"
	"github.com/brettstark73/crewbuilder/pkg/store"
	"github.com/brettstark73/crewbuilder/pkg/tokens"
)

// TaskState tracks a task through execution.
type TaskState string

const (
	TaskStateSubmitted TaskState = "submitted"
	TaskStateWorking   TaskState = "working"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
)

// TaskResult is the outcome of executing one designed task.
type TaskResult struct {
	ID          string           `json:"id"`
	Spec        project.TaskSpec `json:"spec"`
	State       TaskState        `json:"state"`
	Output      string           `json:"output,omitempty"`
	Usage       llms.Usage       `json:"usage"`
	Error       string           `json:"error,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
}

// Result is the outcome of a full run.
type Result struct {
	RunID       string             `json:"run_id"`
	Analysis    *designer.Analysis `json:"analysis"`
	Tasks       []TaskResult       `json:"tasks"`
	TotalTokens int                `json:"total_tokens"`
	Status      string             `json:"status"`
	ProjectDir  string             `json:"project_dir"`
	Files       []string           `json:"files,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
}

// Runner drives the analyze, design, and execute pipeline.
type Runner struct {
	cfg      *config.RunnerConfig
	provider llms.Provider
	designer *designer.Designer
	counter  *tokens.Counter
	chunker  *tokens.Chunker
	limiter  *ratelimit.Limiter
	history  *store.Store

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLimiter attaches a client-side rate limiter consulted before each call.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(r *Runner) { r.limiter = l }
}

// WithHistory persists run and task records to the given store.
func WithHistory(s *store.Store) Option {
	return func(r *Runner) { r.history = s }
}

// WithCounter uses exact token counting instead of the length estimate.
func WithCounter(c *tokens.Counter) Option {
	return func(r *Runner) { r.counter = c }
}

// New creates a Runner for the given provider.
func New(cfg *config.RunnerConfig, provider llms.Provider, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("runner config is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}

	r := &Runner{
		cfg:      cfg,
		provider: provider,
		designer: designer.New(provider),
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.chunker = tokens.NewChunker(r.counter, cfg.MaxTokensPerChunk)
	return r, nil
}

// Run executes the full pipeline for a project idea: analyze, design tasks,
// execute them in chunks, and write the project output.
func (r *Runner) Run(ctx context.Context, idea, audience, timeline string) (*Result, error) {
	if audience == "" {
		audience = r.cfg.Audience
	}
	if timeline == "" {
		timeline = r.cfg.Timeline
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Status:    "working",
		StartedAt: time.Now(),
	}

	slog.Info("Starting run", "run_id", result.RunID, "idea", idea)

	analysis, err := r.designer.AnalyzeProject(ctx, idea, audience, timeline)
	if err != nil {
		return nil, fmt.Errorf("analysis phase failed: %w", err)
	}
	result.Analysis = analysis

	tasks, err := r.designer.GenerateTasks(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("task design phase failed: %w", err)
	}
	slog.Info("Task plan ready",
		"run_id", result.RunID,
		"archetype", analysis.Classification.Archetype,
		"tasks", len(tasks))

	r.saveRun(ctx, result, "working")

	if err := r.executeTasks(ctx, result, tasks); err != nil {
		result.Status = "failed"
		result.CompletedAt = time.Now()
		r.saveRun(ctx, result, result.Status)
		return result, err
	}

	result.Status = finalStatus(result.Tasks)
	result.CompletedAt = time.Now()

	if err := r.writeOutput(result); err != nil {
		return result, fmt.Errorf("failed to write run output: %w", err)
	}

	r.saveRun(ctx, result, result.Status)
	metrics.RunsTotal.WithLabelValues(result.Status).Inc()

	slog.Info("Run finished",
		"run_id", result.RunID,
		"status", result.Status,
		"total_tokens", result.TotalTokens,
		"project_dir", result.ProjectDir)

	return result, nil
}

// executeTasks runs the designed tasks in order, grouped into token-budgeted
// chunks, pausing after each task but the last to stay under provider
// per-minute budgets.
func (r *Runner) executeTasks(ctx context.Context, result *Result, tasks []project.TaskSpec) error {
	prompts := make([]string, len(tasks))
	for i, task := range tasks {
		prompt, err := designer.ExecutionPrompt(task, result.Analysis.Idea)
		if err != nil {
			return err
		}
		prompts[i] = r.fitPrompt(prompt)
	}

	chunks := r.chunker.Split(prompts)
	slog.Info("Execution plan",
		"run_id", result.RunID,
		"tasks", len(tasks),
		"chunks", len(chunks),
		"ceiling", r.chunker.MaxTokens())

	executed := 0
	for _, chunk := range chunks {
		for _, i := range chunk.Indices {
			if err := ctx.Err(); err != nil {
				return err
			}
			tr := r.executeTask(ctx, result.RunID, i, tasks[i], prompts[i])
			result.Tasks = append(result.Tasks, tr)
			result.TotalTokens += tr.Usage.TotalTokens
			r.saveTask(ctx, result.RunID, i, tr)

			executed++
			if executed < len(tasks) && r.cfg.ChunkDelay > 0 {
				slog.Info("Pausing before next task", "seconds", r.cfg.ChunkDelay)
				r.sleep(time.Duration(r.cfg.ChunkDelay) * time.Second)
			}
		}
	}

	return nil
}

// executeTask runs a single task, retrying once after the configured backoff
// when the provider reports a rate limit.
func (r *Runner) executeTask(ctx context.Context, runID string, index int, task project.TaskSpec, prompt string) TaskResult {
	tr := TaskResult{
		ID:        uuid.NewString(),
		Spec:      task,
		State:     TaskStateSubmitted,
		StartedAt: time.Now(),
	}

	slog.Info("Executing task", "run_id", runID, "task", task.Name, "index", index)
	tr.State = TaskStateWorking

	output, usage, err := r.generate(ctx, prompt)
	if err != nil && httpclient.IsRateLimited(err) {
		backoff := time.Duration(r.cfg.RateLimitBackoff) * time.Second
		slog.Warn("Rate limited, backing off", "task", task.Name, "backoff", backoff)
		metrics.RateLimitWaitsTotal.Inc()
		r.sleep(backoff)
		output, usage, err = r.generate(ctx, prompt)
	}

	tr.CompletedAt = time.Now()
	tr.Usage = usage

	if err != nil {
		tr.State = TaskStateFailed
		tr.Error = err.Error()
		slog.Error("Task failed", "run_id", runID, "task", task.Name, "error", err)
	} else {
		tr.State = TaskStateCompleted
		tr.Output = output
		slog.Info("Task completed", "run_id", runID, "task", task.Name, "tokens", usage.TotalTokens)
	}

	metrics.TasksTotal.WithLabelValues(string(tr.State)).Inc()
	return tr
}

// generate performs one provider call with rate limit checks and usage
// accounting.
func (r *Runner) generate(ctx context.Context, prompt string) (string, llms.Usage, error) {
	if r.limiter != nil {
		check, err := r.limiter.Check(ctx)
		if err != nil {
			return "", llms.Usage{}, err
		}
		if !check.Allowed {
			wait := time.Duration(r.cfg.RateLimitBackoff) * time.Second
			if check.RetryAfter != nil {
				wait = *check.RetryAfter
			}
			slog.Warn("Budget exhausted, waiting", "reason", check.Reason, "wait", wait)
			metrics.RateLimitWaitsTotal.Inc()
			r.sleep(wait)
		}
	}

	temp := designer.ExecutionTemperature
	output, usage, err := r.provider.Generate(ctx,
		[]llms.Message{
			{Role: llms.RoleSystem, Content: designer.ExecutorSystemPrompt()},
			{Role: llms.RoleUser, Content: prompt},
		},
		&llms.GenerateOptions{Temperature: &temp},
	)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequestsTotal.WithLabelValues(r.provider.ModelName(), status).Inc()
	metrics.RecordUsage(r.provider.ModelName(), usage.PromptTokens, usage.CompletionTokens)

	if r.limiter != nil {
		if recordErr := r.limiter.Record(ctx, int64(usage.TotalTokens), 1); recordErr != nil {
			slog.Warn("Failed to record rate limit usage", "error", recordErr)
		}
	}

	return output, usage, err
}

// fitPrompt truncates a prompt that alone exceeds the chunk ceiling. The cut
// lands on a line boundary so fenced sections stay parseable.
func (r *Runner) fitPrompt(prompt string) string {
	if !r.chunker.Oversized(prompt) {
		return prompt
	}

	// Rough char budget from the token ceiling; trim back to a newline.
	budget := r.chunker.MaxTokens() * 4
	if budget >= len(prompt) {
		return prompt
	}
	cut := budget
	for cut > 0 && prompt[cut] != '\n' {
		cut--
	}
	if cut == 0 {
		cut = budget
	}
	slog.Warn("Prompt exceeds chunk ceiling, truncating", "original_chars", len(prompt), "kept_chars", cut)
	return prompt[:cut]
}

func finalStatus(tasks []TaskResult) string {
	for _, t := range tasks {
		if t.State == TaskStateFailed {
			return "completed_with_errors"
		}
	}
	return "completed"
}

func (r *Runner) saveRun(ctx context.Context, result *Result, status string) {
	if r.history == nil {
		return
	}

	run := &store.Run{
		ID:          result.RunID,
		Idea:        result.Analysis.Idea,
		Archetype:   string(result.Analysis.Classification.Archetype),
		Audience:    result.Analysis.Audience,
		Timeline:    result.Analysis.Timeline,
		Status:      status,
		TotalTokens: result.TotalTokens,
		OutputDir:   result.ProjectDir,
		CreatedAt:   result.StartedAt,
	}
	if !result.CompletedAt.IsZero() {
		t := result.CompletedAt
		run.CompletedAt = &t
	}

	if err := r.history.SaveRun(ctx, run); err != nil {
		slog.Warn("Failed to persist run", "run_id", result.RunID, "error", err)
	}
}

func (r *Runner) saveTask(ctx context.Context, runID string, position int, tr TaskResult) {
	if r.history == nil {
		return
	}

	rec := &store.TaskRecord{
		ID:       tr.ID,
		RunID:    runID,
		Position: position,
		Name:     tr.Spec.Name,
		Status:   string(tr.State),
		Tokens:   tr.Usage.TotalTokens,
		Error:    tr.Error,
	}
	if err := r.history.SaveTask(ctx, rec); err != nil {
		slog.Warn("Failed to persist task", "run_id", runID, "task", tr.Spec.Name, "error", err)
	}
}
