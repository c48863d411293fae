// Package project classifies project descriptions into archetypes and
// supplies template task plans per archetype.
package project

// Archetype is a coarse project category used to select task templates.
type Archetype string

const (
	ArchetypeGame   Archetype = "game"
	ArchetypeWebApp Archetype = "webapp"
	ArchetypeMobile Archetype = "mobile"
	ArchetypeAITool Archetype = "aitool"
	ArchetypeTool   Archetype = "tool"
)

// precedence orders archetypes for tie-breaking: more specific first.
var precedence = []Archetype{
	ArchetypeGame,
	ArchetypeWebApp,
	ArchetypeMobile,
	ArchetypeAITool,
	ArchetypeTool,
}

// Complexity is a rough effort estimate for a task.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// TaskSpec describes a single development task.
type TaskSpec struct {
	Name            string     `json:"name" jsonschema:"description=Clear descriptive task name"`
	Description     string     `json:"description" jsonschema:"description=Detailed description of what needs to be built"`
	ExpectedOutput  string     `json:"expected_output" jsonschema:"description=Specific deliverable such as a working file or feature"`
	SuccessCriteria string     `json:"success_criteria" jsonschema:"description=How to verify the task is complete and working"`
	Dependencies    []string   `json:"dependencies,omitempty" jsonschema:"description=Names of tasks that must be completed first"`
	Complexity      Complexity `json:"complexity,omitempty" jsonschema:"description=Estimated complexity,enum=simple,enum=medium,enum=complex"`
}

// Classification is the result of archetype detection.
type Classification struct {
	Archetype Archetype `json:"archetype"`

	// Scores holds the weighted signal score per archetype.
	Scores map[Archetype]int `json:"scores"`

	// Signals lists the matched keywords and phrases, in match order.
	Signals []string `json:"signals"`
}
