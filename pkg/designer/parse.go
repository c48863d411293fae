package designer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brettstark73/crewbuilder/pkg/project"
)

// ParseTasks extracts a task list from an LLM response. It tries, in order:
// a {"tasks": [...]} object, a bare JSON array (including one embedded in
// surrounding prose), and finally the labelled-line text format.
func ParseTasks(text string) ([]project.TaskSpec, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response")
	}

	var wrapped taskList
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err == nil && len(wrapped.Tasks) > 0 {
		return wrapped.Tasks, nil
	}

	var tasks []project.TaskSpec
	if err := json.Unmarshal([]byte(trimmed), &tasks); err == nil && len(tasks) > 0 {
		return tasks, nil
	}

	// Models often wrap JSON in prose or code fences: take the outermost
	// bracketed region.
	if start, end := strings.Index(trimmed, "["), strings.LastIndex(trimmed, "]"); start >= 0 && end > start {
		fragment := trimmed[start : end+1]
		if err := json.Unmarshal([]byte(fragment), &tasks); err == nil && len(tasks) > 0 {
			return tasks, nil
		}
	}

	if tasks := parseLabelledTasks(trimmed); len(tasks) > 0 {
		return tasks, nil
	}

	return nil, fmt.Errorf("response contains no parseable tasks")
}

// parseLabelledTasks handles the "TASK NAME: ..." labelled-line format some
// models produce instead of JSON.
func parseLabelledTasks(text string) []project.TaskSpec {
	var tasks []project.TaskSpec
	var current *project.TaskSpec

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.Contains(line, "TASK NAME:"):
			if current != nil && current.Name != "" {
				tasks = append(tasks, *current)
			}
			current = &project.TaskSpec{
				Name: strings.TrimSpace(afterLabel(line, "TASK NAME:")),
			}
		case current == nil:
			continue
		case strings.Contains(line, "DESCRIPTION:"):
			current.Description = strings.TrimSpace(afterLabel(line, "DESCRIPTION:"))
		case strings.Contains(line, "EXPECTED OUTPUT:"):
			current.ExpectedOutput = strings.TrimSpace(afterLabel(line, "EXPECTED OUTPUT:"))
		case strings.Contains(line, "SUCCESS CRITERIA:"):
			current.SuccessCriteria = strings.TrimSpace(afterLabel(line, "SUCCESS CRITERIA:"))
		}
	}

	if current != nil && current.Name != "" {
		tasks = append(tasks, *current)
	}

	return tasks
}

func afterLabel(line, label string) string {
	if idx := strings.Index(line, label); idx >= 0 {
		return line[idx+len(label):]
	}
	return ""
}
