package runner

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettstark73/crewbuilder/pkg/artifacts"
	"github.com/brettstark73/crewbuilder/pkg/designer"
	"github.com/brettstark73/crewbuilder/pkg/project"
)

const runTimestampLayout = "20060102_150405"

// writeOutput creates the project directory and writes the extracted code
// files, project guide, combined markdown report, and JSON run record.
func (r *Runner) writeOutput(result *Result) error {
	dir := filepath.Join(r.cfg.OutputDir,
		fmt.Sprintf("%s_%s", slugify(result.Analysis.Idea), result.StartedAt.Format(runTimestampLayout)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	result.ProjectDir = dir

	var extracted []artifacts.File
	for _, tr := range result.Tasks {
		if tr.State != TaskStateCompleted {
			continue
		}
		extracted = append(extracted, artifacts.Extract(tr.Output)...)
	}
	written, err := artifacts.WriteFiles(dir, extracted)
	if err != nil {
		return err
	}
	result.Files = written
	slog.Info("Artifacts written", "run_id", result.RunID, "files", len(written))

	specs := make([]project.TaskSpec, 0, len(result.Tasks))
	for _, tr := range result.Tasks {
		specs = append(specs, tr.Spec)
	}
	guide, err := designer.ProjectGuide(result.Analysis, specs)
	if err != nil {
		return err
	}
	guidePath := filepath.Join(dir, "PROJECT_GUIDE.md")
	if err := os.WriteFile(guidePath, []byte(guide), 0o644); err != nil {
		return fmt.Errorf("failed to write project guide: %w", err)
	}
	result.Files = append(result.Files, guidePath)

	stamp := result.StartedAt.Format(runTimestampLayout)

	reportPath := filepath.Join(dir, fmt.Sprintf("run_report_%s.md", stamp))
	if err := os.WriteFile(reportPath, []byte(r.renderReport(result)), 0o644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	result.Files = append(result.Files, reportPath)

	recordPath := filepath.Join(dir, fmt.Sprintf("run_record_%s.json", stamp))
	record, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := os.WriteFile(recordPath, append(record, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	result.Files = append(result.Files, recordPath)

	return nil
}

// renderReport builds the combined markdown report: analysis, per-task
// status and output, and totals.
func (r *Runner) renderReport(result *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Build Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s\n", result.RunID)
	fmt.Fprintf(&b, "**Project:** %s\n", result.Analysis.Idea)
	fmt.Fprintf(&b, "**Type:** %s\n", result.Analysis.Classification.Archetype)
	fmt.Fprintf(&b, "**Status:** %s\n", result.Status)
	fmt.Fprintf(&b, "**Total Tokens:** %d\n", result.TotalTokens)
	fmt.Fprintf(&b, "**Started:** %s\n", result.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Finished:** %s\n\n", result.CompletedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Project Analysis\n\n")
	b.WriteString(result.Analysis.Text)
	b.WriteString("\n\n## Task Results\n\n")

	for i, tr := range result.Tasks {
		fmt.Fprintf(&b, "### %d. %s (%s)\n\n", i+1, tr.Spec.Name, tr.State)
		if tr.Error != "" {
			fmt.Fprintf(&b, "Error: %s\n\n", tr.Error)
			continue
		}
		b.WriteString(tr.Output)
		b.WriteString("\n\n")
	}

	return b.String()
}

// slugify reduces an idea to a short filesystem-safe directory prefix.
func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
		if b.Len() >= 40 {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "project"
	}
	return slug
}
