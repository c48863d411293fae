// Package designer analyzes project ideas and generates development task
// plans using an LLM, with deterministic fallbacks.
package designer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/brettstark73/crewbuilder/pkg/llms"
	"github.com/brettstark73/crewbuilder/pkg/project"
)

// Analysis temperature is very low for consistent classification; execution
// uses a slightly higher one.
const (
	AnalysisTemperature  = 0.1
	ExecutionTemperature = 0.3
)

// Analysis is the outcome of the project analysis phase.
type Analysis struct {
	Idea           string                 `json:"idea"`
	Audience       string                 `json:"audience"`
	Timeline       string                 `json:"timeline"`
	Classification project.Classification `json:"classification"`
	Text           string                 `json:"text"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// Designer runs the analysis and task generation phases.
type Designer struct {
	provider llms.Provider
}

// New creates a Designer backed by the given provider.
func New(provider llms.Provider) *Designer {
	return &Designer{provider: provider}
}

// taskList wraps the task array so strict structured output has an object at
// the top level.
type taskList struct {
	Tasks []project.TaskSpec `json:"tasks"`
}

// taskListSchema derives the JSON schema for structured task output from the
// Go types.
func taskListSchema() map[string]any {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(&taskList{})

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// AnalyzeProject classifies the idea and produces the detailed analysis text
// that guides task creation.
func (d *Designer) AnalyzeProject(ctx context.Context, idea, audience, timeline string) (*Analysis, error) {
	if strings.TrimSpace(idea) == "" {
		return nil, fmt.Errorf("project idea cannot be empty")
	}

	classification := project.Classify(idea)

	var promptBuf strings.Builder
	err := analysisPromptTmpl.Execute(&promptBuf, struct {
		Idea, Audience, Timeline string
		Archetype                project.Archetype
	}{idea, audience, timeline, classification.Archetype})
	if err != nil {
		return nil, fmt.Errorf("failed to render analysis prompt: %w", err)
	}

	temp := AnalysisTemperature
	text, usage, err := d.provider.Generate(ctx,
		[]llms.Message{
			{Role: llms.RoleSystem, Content: analyzerSystemPrompt},
			{Role: llms.RoleUser, Content: promptBuf.String()},
		},
		&llms.GenerateOptions{Temperature: &temp},
	)
	if err != nil {
		return nil, fmt.Errorf("project analysis failed: %w", err)
	}

	slog.Debug("Project analysis complete",
		"archetype", classification.Archetype,
		"tokens", usage.TotalTokens)

	return &Analysis{
		Idea:           idea,
		Audience:       audience,
		Timeline:       timeline,
		Classification: classification,
		Text:           text,
		GeneratedAt:    time.Now(),
	}, nil
}

// GenerateTasks asks the LLM for a project-specific task list based on the
// analysis. Unparseable responses fall back to the archetype template plan,
// so this never returns an empty plan.
func (d *Designer) GenerateTasks(ctx context.Context, analysis *Analysis) ([]project.TaskSpec, error) {
	if analysis == nil {
		return nil, fmt.Errorf("analysis is required")
	}

	var promptBuf strings.Builder
	err := taskPromptTmpl.Execute(&promptBuf, struct {
		AnalysisText, Idea, ValidationGuidance string
	}{analysis.Text, analysis.Idea, validationGuidance(analysis.Classification.Archetype)})
	if err != nil {
		return nil, fmt.Errorf("failed to render task prompt: %w", err)
	}

	temp := AnalysisTemperature
	text, usage, err := d.provider.Generate(ctx,
		[]llms.Message{
			{Role: llms.RoleSystem, Content: analyzerSystemPrompt},
			{Role: llms.RoleUser, Content: promptBuf.String()},
		},
		&llms.GenerateOptions{
			Temperature: &temp,
			Schema:      taskListSchema(),
			SchemaName:  "task_list",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("task generation failed: %w", err)
	}

	slog.Debug("Task generation complete", "tokens", usage.TotalTokens)

	tasks, parseErr := ParseTasks(text)
	if parseErr != nil || len(tasks) == 0 {
		slog.Warn("Could not parse generated tasks, using template plan",
			"archetype", analysis.Classification.Archetype,
			"error", parseErr)
		return project.TemplatePlan(analysis.Classification.Archetype, analysis.Idea), nil
	}

	return tasks, nil
}

// ExecutionPrompt renders the prompt the runner sends for a single task.
func ExecutionPrompt(task project.TaskSpec, idea string) (string, error) {
	var buf strings.Builder
	err := executionPromptTmpl.Execute(&buf, struct {
		Task project.TaskSpec
		Idea string
	}{task, idea})
	if err != nil {
		return "", fmt.Errorf("failed to render execution prompt: %w", err)
	}
	return buf.String(), nil
}

// ExecutorSystemPrompt is the system prompt for task execution calls.
func ExecutorSystemPrompt() string {
	return executorSystemPrompt
}
