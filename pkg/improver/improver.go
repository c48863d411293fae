// Package improver runs the build pipeline against an existing generated
// project to apply requested improvements.
package improver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brettstark73/crewbuilder/pkg/runner"
)

// ImprovementTimeline is shorter than a fresh build since the project
// structure already exists.
const ImprovementTimeline = "3-5 days"

// maxFileContext caps how much of each source file goes into the prompt.
const maxFileContext = 8 * 1024

// SourceFile is one existing project file included in the improvement context.
type SourceFile struct {
	Name    string
	Content string
}

// Improver wraps a Runner with project-reading and context building.
type Improver struct {
	runner *runner.Runner
}

// New creates an Improver driving the given runner.
func New(r *runner.Runner) *Improver {
	return &Improver{runner: r}
}

// Improve reads the project's web source files, builds an improvement-focused
// description, and runs the standard pipeline on it.
func (im *Improver) Improve(ctx context.Context, projectDir, request, audience string) (*runner.Result, error) {
	if strings.TrimSpace(request) == "" {
		return nil, fmt.Errorf("improvement request cannot be empty")
	}

	files, err := ReadProjectFiles(projectDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .html, .js, or .css files found in %s", projectDir)
	}

	slog.Info("Improving project", "dir", projectDir, "files", len(files))

	description := BuildDescription(files, request)
	return im.runner.Run(ctx, description, audience, ImprovementTimeline)
}

// ReadProjectFiles loads the .html, .js, and .css files at the top level of
// dir, sorted by name.
func ReadProjectFiles(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".html", ".js", ".css":
		default:
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		content := string(data)
		if len(content) > maxFileContext {
			content = content[:maxFileContext] + "\n/* ... truncated ... */"
		}
		files = append(files, SourceFile{Name: entry.Name(), Content: content})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// BuildDescription assembles the improvement-focused project description fed
// to the pipeline in place of a fresh idea.
func BuildDescription(files []SourceFile, request string) string {
	var b strings.Builder

	b.WriteString("EXISTING PROJECT IMPROVEMENT:\n\n")

	b.WriteString("Current Project Files:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "- %s\n", f.Name)
	}

	fmt.Fprintf(&b, "\nImprovement Request: %s\n\n", request)

	b.WriteString("Instructions: Analyze the existing code and implement the requested improvements.\n")
	b.WriteString("Focus on enhancing the existing functionality rather than rebuilding from scratch.\n")
	b.WriteString("Maintain compatibility with the current project structure.\n")

	b.WriteString("\nCurrent Source:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", f.Name, f.Content)
	}

	return b.String()
}
