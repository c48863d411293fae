package designer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/brettstark73/crewbuilder/pkg/project"
)

var guideTmpl = template.Must(template.New("guide").Funcs(template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
}).Parse(
	`# Project Development Guide

## Project Overview
**Idea:** {{.Idea}}
**Target Audience:** {{.Audience}}
**Timeline:** {{.Timeline}}
**Detected Type:** {{.Archetype}}
**Generated:** {{.GeneratedAt}}

## Project Analysis

{{.AnalysisText}}

## Development Tasks

{{range $i, $task := .Tasks}}### Task {{inc $i}}: {{$task.Name}}

**Description:** {{$task.Description}}

**Expected Output:** {{$task.ExpectedOutput}}

**Success Criteria:** {{$task.SuccessCriteria}}
{{if $task.Dependencies}}
**Dependencies:** {{join $task.Dependencies ", "}}
{{end}}{{if $task.Complexity}}
**Complexity:** {{$task.Complexity}}
{{end}}
{{end}}## Execution Notes

- Tasks are executed in order; later tasks build on earlier output.
- Each task produces files written into the project directory.
- Validation tasks verify the common failure patterns for this project type.
`))

// ProjectGuide renders the markdown guide written alongside generated
// project files.
func ProjectGuide(analysis *Analysis, tasks []project.TaskSpec) (string, error) {
	var buf strings.Builder
	err := guideTmpl.Execute(&buf, struct {
		Idea, Audience, Timeline string
		Archetype                project.Archetype
		GeneratedAt              string
		AnalysisText             string
		Tasks                    []project.TaskSpec
	}{
		Idea:         analysis.Idea,
		Audience:     analysis.Audience,
		Timeline:     analysis.Timeline,
		Archetype:    analysis.Classification.Archetype,
		GeneratedAt:  analysis.GeneratedAt.Format("2006-01-02 15:04:05"),
		AnalysisText: analysis.Text,
		Tasks:        tasks,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render project guide: %w", err)
	}
	return buf.String(), nil
}
