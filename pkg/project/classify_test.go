package project

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        Archetype
	}{
		{
			name:        "space invaders game",
			description: "space invaders arcade game with HTML5 canvas, player movement, shooting, enemy waves, collision detection, and scoring",
			want:        ArchetypeGame,
		},
		{
			name:        "tetris clone",
			description: "a tetris clone with levels and a high score table",
			want:        ArchetypeGame,
		},
		{
			name:        "todo web app",
			description: "a todo web app with user accounts, login, and a REST API backed by a database",
			want:        ArchetypeWebApp,
		},
		{
			name:        "saas dashboard",
			description: "SaaS dashboard with authentication and CRUD forms",
			want:        ArchetypeWebApp,
		},
		{
			name:        "mobile app",
			description: "a mobile app for iOS and Android with push notifications and offline support",
			want:        ArchetypeMobile,
		},
		{
			name:        "pwa with gestures",
			description: "a PWA with swipe gestures for phone and tablet",
			want:        ArchetypeMobile,
		},
		{
			name:        "ai summarizer",
			description: "an AI tool that uses a language model to build a summarizer for long documents",
			want:        ArchetypeAITool,
		},
		{
			name:        "sentiment chatbot",
			description: "chatbot with sentiment analysis powered by GPT",
			want:        ArchetypeAITool,
		},
		{
			name:        "cli converter",
			description: "a command line converter utility for CSV files",
			want:        ArchetypeTool,
		},
		{
			name:        "empty description",
			description: "",
			want:        ArchetypeTool,
		},
		{
			name:        "no signals",
			description: "something nice for my grandmother",
			want:        ArchetypeTool,
		},
		{
			name:        "game beats webapp on mixed signals",
			description: "browser game with a score dashboard and login for the high score table",
			want:        ArchetypeGame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.description)
			if got.Archetype != tt.want {
				t.Errorf("Classify(%q) = %v (scores %v), want %v",
					tt.description, got.Archetype, got.Scores, tt.want)
			}
		})
	}
}

func TestClassify_WholeWordMatching(t *testing.T) {
	// "ai" must not match inside words like "maintain".
	got := Classify("maintain a plain list")
	if got.Scores[ArchetypeAITool] != 0 {
		t.Errorf("aitool score = %d for text without AI signals, want 0 (signals: %v)",
			got.Scores[ArchetypeAITool], got.Signals)
	}
}

func TestClassify_ReportsSignals(t *testing.T) {
	got := Classify("space invaders arcade game")

	if len(got.Signals) == 0 {
		t.Fatal("Classify() reported no signals")
	}

	found := false
	for _, s := range got.Signals {
		if s == "space invaders" {
			found = true
		}
	}
	if !found {
		t.Errorf("Classify() signals = %v, want to include %q", got.Signals, "space invaders")
	}
}

func TestClassify_PhraseOutweighsKeyword(t *testing.T) {
	// "web app" phrase (weight 4) should beat a single game keyword.
	got := Classify("web app with a score column")
	if got.Archetype != ArchetypeWebApp {
		t.Errorf("Classify() = %v (scores %v), want webapp", got.Archetype, got.Scores)
	}
}

func TestTemplatePlan(t *testing.T) {
	tests := []struct {
		archetype Archetype
		// every plan starts with setup and ends with the universal checklist
		wantContains string
	}{
		{ArchetypeGame, "Game State Management Testing"},
		{ArchetypeWebApp, "Authentication Flow Testing"},
		{ArchetypeMobile, "Touch & Gesture Testing"},
		{ArchetypeAITool, "AI Integration Reliability"},
		{ArchetypeTool, "Core Implementation"},
	}

	for _, tt := range tests {
		t.Run(string(tt.archetype), func(t *testing.T) {
			plan := TemplatePlan(tt.archetype, "a sample project")

			if len(plan) < 4 {
				t.Fatalf("TemplatePlan() returned %d tasks, want at least 4", len(plan))
			}
			if plan[0].Name != "Project Setup" {
				t.Errorf("first task = %q, want Project Setup", plan[0].Name)
			}
			if plan[len(plan)-1].Name != "Final Integration Testing" {
				t.Errorf("last task = %q, want Final Integration Testing", plan[len(plan)-1].Name)
			}

			found := false
			for _, task := range plan {
				if task.Name == tt.wantContains {
					found = true
				}
				if task.Name == "" || task.Description == "" {
					t.Errorf("task %+v missing name or description", task)
				}
			}
			if !found {
				t.Errorf("TemplatePlan(%v) missing task %q", tt.archetype, tt.wantContains)
			}
		})
	}
}

func TestTemplatePlan_MandatedValidationTasks(t *testing.T) {
	tests := map[Archetype][]string{
		ArchetypeGame: {
			"Game State Management Testing",
			"Audio System Validation",
			"Input System Reliability",
			"Performance & Rendering",
			"Cross-Browser Game Testing",
		},
		ArchetypeWebApp: {
			"Form & Data Integrity Testing",
			"Authentication Flow Testing",
			"API Integration Robustness",
			"Responsive & Accessibility Testing",
			"Security Validation",
		},
		ArchetypeMobile: {
			"Touch & Gesture Testing",
			"Device Integration Testing",
			"Mobile Performance Testing",
			"Platform Compatibility",
		},
		ArchetypeAITool: {
			"AI Integration Reliability",
			"Data Processing Pipeline",
			"User Experience Flow",
			"AI Service Testing",
		},
	}

	universal := []string{
		"Cross-Browser Compatibility Testing",
		"Performance Optimization",
		"Error Handling & User Feedback",
		"Code Quality & Maintainability",
		"Final Integration Testing",
	}

	for archetype, wantTasks := range tests {
		t.Run(string(archetype), func(t *testing.T) {
			plan := TemplatePlan(archetype, "a sample project")
			names := make(map[string]bool, len(plan))
			for _, task := range plan {
				names[task.Name] = true
			}

			for _, want := range append(wantTasks, universal...) {
				if !names[want] {
					t.Errorf("%v plan missing %q", archetype, want)
				}
			}
		})
	}

	// The generic plan still carries the full universal checklist.
	plan := TemplatePlan(ArchetypeTool, "a sample project")
	names := make(map[string]bool, len(plan))
	for _, task := range plan {
		names[task.Name] = true
	}
	for _, want := range universal {
		if !names[want] {
			t.Errorf("tool plan missing %q", want)
		}
	}
}

func TestValidationTasks_ExcludeSetupAndChecklist(t *testing.T) {
	for _, archetype := range []Archetype{ArchetypeGame, ArchetypeWebApp, ArchetypeMobile, ArchetypeAITool} {
		for _, task := range ValidationTasks(archetype) {
			if task.Name == "Project Setup" || strings.HasPrefix(task.Name, "Core ") {
				t.Errorf("%v: %q is not a validation task", archetype, task.Name)
			}
			if len(task.Dependencies) == 0 {
				t.Errorf("%v: validation task %q has no core dependency", archetype, task.Name)
			}
		}
	}
	if got := ValidationTasks(ArchetypeTool); got != nil {
		t.Errorf("ValidationTasks(tool) = %v, want nil", got)
	}
}

func TestTemplatePlan_DependenciesResolvable(t *testing.T) {
	for _, archetype := range []Archetype{ArchetypeGame, ArchetypeWebApp, ArchetypeMobile, ArchetypeAITool, ArchetypeTool} {
		plan := TemplatePlan(archetype, "idea")

		names := make(map[string]bool, len(plan))
		for _, task := range plan {
			names[task.Name] = true
		}
		for _, task := range plan {
			for _, dep := range task.Dependencies {
				if !names[dep] {
					t.Errorf("%v: task %q depends on unknown task %q", archetype, task.Name, dep)
				}
			}
		}
	}
}

func TestFallbackPlan(t *testing.T) {
	plan := FallbackPlan()
	if len(plan) != 3 {
		t.Fatalf("FallbackPlan() = %d tasks, want 3", len(plan))
	}
	if plan[0].Name != "Project Setup" {
		t.Errorf("FallbackPlan()[0] = %q, want Project Setup", plan[0].Name)
	}
}
