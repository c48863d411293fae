package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/brettstark73/crewbuilder/pkg/config"
	"github.com/brettstark73/crewbuilder/pkg/improver"
	"github.com/brettstark73/crewbuilder/pkg/llms"
	"github.com/brettstark73/crewbuilder/pkg/project"
	"github.com/brettstark73/crewbuilder/pkg/ratelimit"
	"github.com/brettstark73/crewbuilder/pkg/runner"
	"github.com/brettstark73/crewbuilder/pkg/server"
	"github.com/brettstark73/crewbuilder/pkg/store"
	"github.com/brettstark73/crewbuilder/pkg/tokens"
)

// llmOverrides are the flags shared by build and improve that override the
// configured LLM settings.
type llmOverrides struct {
	Provider  string `help:"LLM provider (openai, anthropic)."`
	Model     string `help:"Model name."`
	APIKey    string `name:"api-key" help:"API key (defaults to environment variable)."`
	OutputDir string `name:"output-dir" help:"Directory for generated projects." type:"path"`
	Audience  string `help:"Target audience for the project."`
}

func (o *llmOverrides) apply(cfg *config.Config) {
	if o.Provider != "" {
		cfg.LLM.Provider = config.LLMProvider(o.Provider)
		cfg.LLM.Model = ""
		cfg.LLM.BaseURL = ""
	}
	if o.Model != "" {
		cfg.LLM.Model = o.Model
	}
	if o.APIKey != "" {
		cfg.LLM.APIKey = o.APIKey
	}
	if o.OutputDir != "" {
		cfg.Runner.OutputDir = o.OutputDir
	}
	if o.Audience != "" {
		cfg.Runner.Audience = o.Audience
	}
	cfg.SetDefaults()
}

// pipeline bundles the components a build or improve run needs.
type pipeline struct {
	provider llms.Provider
	runner   *runner.Runner
	history  *store.Store
}

func (p *pipeline) Close() {
	if p.history != nil {
		p.history.Close()
	}
	if p.provider != nil {
		if err := p.provider.Close(); err != nil {
			slog.Warn("Failed to close provider", "error", err)
		}
	}
}

// newPipeline builds the provider, rate limiter, history store, and runner
// from config.
func newPipeline(cfg *config.Config) (*pipeline, error) {
	provider, err := llms.NewProviderFromConfig(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	opts := []runner.Option{}

	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.NewLimiter(&cfg.RateLimit, nil)
		if err != nil {
			provider.Close()
			return nil, err
		}
		opts = append(opts, runner.WithLimiter(limiter))
	}

	if counter, err := tokens.NewCounter(cfg.LLM.Model); err == nil {
		opts = append(opts, runner.WithCounter(counter))
	} else {
		slog.Debug("No token encoding for model, using length estimate", "model", cfg.LLM.Model)
	}

	p := &pipeline{provider: provider}

	if cfg.Store.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			provider.Close()
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		history, err := store.Open(cfg.Store.Path)
		if err != nil {
			provider.Close()
			return nil, err
		}
		p.history = history
		opts = append(opts, runner.WithHistory(history))
	}

	r, err := runner.New(&cfg.Runner, provider, opts...)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.runner = r
	return p, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()
	return ctx, cancel
}

// BuildCmd generates a project from a description.
type BuildCmd struct {
	Idea     string `arg:"" help:"Project description."`
	Timeline string `help:"Development timeline (e.g. '2 weeks')."`
	DryRun   bool   `name:"dry-run" help:"Classify and print the template plan without calling the LLM."`

	llmOverrides
}

func (c *BuildCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(ctx, cli)
	if err != nil {
		return err
	}
	c.apply(cfg)

	if c.DryRun {
		printPlan(c.Idea)
		return nil
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.runner.Run(ctx, c.Idea, cfg.Runner.Audience, c.Timeline)
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s %s\n", result.RunID, result.Status)
	fmt.Printf("Project written to %s (%d files, %d tokens)\n",
		result.ProjectDir, len(result.Files), result.TotalTokens)
	return nil
}

// AnalyzeCmd classifies an idea and prints the template task plan.
type AnalyzeCmd struct {
	Idea string `arg:"" help:"Project description."`
}

func (c *AnalyzeCmd) Run(_ *CLI) error {
	printPlan(c.Idea)
	return nil
}

func printPlan(idea string) {
	classification := project.Classify(idea)

	fmt.Printf("Project type: %s\n", classification.Archetype)
	if len(classification.Signals) > 0 {
		fmt.Printf("Matched signals: %v\n", classification.Signals)
	}
	fmt.Printf("Scores: ")
	for _, a := range []project.Archetype{
		project.ArchetypeGame, project.ArchetypeWebApp, project.ArchetypeMobile,
		project.ArchetypeAITool, project.ArchetypeTool,
	} {
		fmt.Printf("%s=%d ", a, classification.Scores[a])
	}
	fmt.Println()

	fmt.Println("\nTemplate task plan:")
	for i, task := range project.TemplatePlan(classification.Archetype, idea) {
		fmt.Printf("  %d. %s", i+1, task.Name)
		if task.Complexity != "" {
			fmt.Printf(" (%s)", task.Complexity)
		}
		fmt.Println()
	}
}

// ImproveCmd runs the pipeline against an existing generated project.
type ImproveCmd struct {
	ProjectDir string `arg:"" help:"Path to the existing project." type:"path"`
	Request    string `arg:"" help:"Improvement request."`

	llmOverrides
}

func (c *ImproveCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(ctx, cli)
	if err != nil {
		return err
	}
	c.apply(cfg)

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := improver.New(p.runner).Improve(ctx, c.ProjectDir, c.Request, cfg.Runner.Audience)
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s %s\n", result.RunID, result.Status)
	fmt.Printf("Improved project written to %s (%d files)\n", result.ProjectDir, len(result.Files))
	return nil
}

// RunsCmd lists recent runs from the history database.
type RunsCmd struct {
	Limit int `help:"Maximum number of runs to show." default:"20"`
}

func (c *RunsCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := loadConfig(ctx, cli)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	history, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.ListRuns(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %-22s %-8s %-10s %8d tokens  %s\n",
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.ID, run.Archetype, run.Status, run.TotalTokens, truncate(run.Idea, 60))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// ServeCmd starts the local run browser.
type ServeCmd struct {
	Port int `help:"Port to listen on." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(ctx, cli)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	history, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer history.Close()

	srv, err := server.New(&cfg.Server, history)
	if err != nil {
		return err
	}

	fmt.Printf("Run browser ready on http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("  Runs:    http://localhost:%d/api/runs\n", cfg.Server.Port)
	fmt.Printf("  Metrics: http://localhost:%d/metrics\n", cfg.Server.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}
