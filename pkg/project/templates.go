package project

import "fmt"

// TemplatePlan builds the template-driven task list for an archetype. The
// plan always runs setup first, then the core build, then archetype-specific
// validation tasks, and ends with the universal quality checklist.
func TemplatePlan(archetype Archetype, idea string) []TaskSpec {
	plan := []TaskSpec{
		{
			Name:            "Project Setup",
			Description:     fmt.Sprintf("Set up the project structure and base files for: %s. Create the entry point, organize assets, and establish the file layout the rest of the tasks build on.", idea),
			ExpectedOutput:  "Working project foundation with all base files in place",
			SuccessCriteria: "Files can be opened and the basic structure exists",
			Complexity:      ComplexitySimple,
		},
	}

	plan = append(plan, coreTasks(archetype, idea)...)
	plan = append(plan, ValidationTasks(archetype)...)
	plan = append(plan, universalChecklist()...)

	return plan
}

func coreTasks(archetype Archetype, idea string) []TaskSpec {
	switch archetype {
	case ArchetypeGame:
		return []TaskSpec{
			{
				Name:            "Core Game Implementation",
				Description:     fmt.Sprintf("Implement the game loop, rendering, input handling, collision detection, scoring, and level progression for: %s.", idea),
				ExpectedOutput:  "Playable game with working loop, rendering, and input",
				SuccessCriteria: "Game runs, responds to input, and tracks score without errors",
				Dependencies:    []string{"Project Setup"},
				Complexity:      ComplexityComplex,
			},
		}
	case ArchetypeWebApp:
		return []TaskSpec{
			{
				Name:            "Core Application Implementation",
				Description:     fmt.Sprintf("Implement the data model, API endpoints, authentication, and UI components for: %s.", idea),
				ExpectedOutput:  "Working application with functional UI and data flow",
				SuccessCriteria: "Main user workflows complete without errors",
				Dependencies:    []string{"Project Setup"},
				Complexity:      ComplexityComplex,
			},
		}
	case ArchetypeMobile:
		return []TaskSpec{
			{
				Name:            "Core Mobile Implementation",
				Description:     fmt.Sprintf("Implement the mobile UI, touch interactions, platform integration, and offline capability for: %s.", idea),
				ExpectedOutput:  "Working mobile app with responsive touch UI",
				SuccessCriteria: "App functions on target platforms and handles orientation changes",
				Dependencies:    []string{"Project Setup"},
				Complexity:      ComplexityComplex,
			},
		}
	case ArchetypeAITool:
		return []TaskSpec{
			{
				Name:            "Core AI Integration",
				Description:     fmt.Sprintf("Implement the model integration, data processing pipeline, and user interface for: %s.", idea),
				ExpectedOutput:  "Working AI tool with functional processing pipeline",
				SuccessCriteria: "Tool produces correct output for representative inputs",
				Dependencies:    []string{"Project Setup"},
				Complexity:      ComplexityComplex,
			},
		}
	default:
		return []TaskSpec{
			{
				Name:            "Core Implementation",
				Description:     fmt.Sprintf("Implement the main functionality for: %s.", idea),
				ExpectedOutput:  "Working core features",
				SuccessCriteria: "Main features function as expected",
				Dependencies:    []string{"Project Setup"},
				Complexity:      ComplexityMedium,
			},
		}
	}
}

// ValidationTasks returns the archetype-specific testing tasks. These target
// the common failure patterns for each project type.
func ValidationTasks(archetype Archetype) []TaskSpec {
	switch archetype {
	case ArchetypeGame:
		return []TaskSpec{
			{
				Name:            "Game State Management Testing",
				Description:     "Verify pause/resume/restart functionality, memory leak prevention (clean up intervals and requestAnimationFrame callbacks), and browser tab focus/blur handling.",
				ExpectedOutput:  "Game state transitions verified and leak-free",
				SuccessCriteria: "Pause, resume, and restart work repeatedly without leaking timers",
				Dependencies:    []string{"Core Game Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Audio System Validation",
				Description:     "Test the sound lifecycle, mobile browser compatibility, audioContext.resume() on user interactions, and multiple overlapping sounds.",
				ExpectedOutput:  "Audio plays reliably across browsers including mobile",
				SuccessCriteria: "Sounds play on first interaction and overlap without glitches",
				Dependencies:    []string{"Core Game Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Input System Reliability",
				Description:     "Verify keyboard listener cleanup, simultaneous key presses, mobile touch input, and prevention of browser defaults such as arrow-key scrolling.",
				ExpectedOutput:  "Input handling verified for keyboard and touch",
				SuccessCriteria: "Simultaneous inputs register correctly and the page never scrolls during play",
				Dependencies:    []string{"Core Game Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Performance & Rendering",
				Description:     "Check canvas clearing, animation cleanup, lower-end device performance, and rendering degradation over long sessions.",
				ExpectedOutput:  "Stable frame rate over extended play",
				SuccessCriteria: "No rendering artifacts or slowdown after prolonged play",
				Dependencies:    []string{"Core Game Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Cross-Browser Game Testing",
				Description:     "Verify the game across different browsers and mobile devices, including full-screen functionality.",
				ExpectedOutput:  "Game verified on desktop and mobile browsers",
				SuccessCriteria: "Game plays correctly in each target browser and in full-screen mode",
				Dependencies:    []string{"Core Game Implementation"},
				Complexity:      ComplexityMedium,
			},
		}
	case ArchetypeWebApp:
		return []TaskSpec{
			{
				Name:            "Form & Data Integrity Testing",
				Description:     "Verify client and server validation, CRUD operations, data persistence, XSS prevention, and input sanitization.",
				ExpectedOutput:  "Forms and data operations verified end to end",
				SuccessCriteria: "Invalid and malicious input is rejected; valid data persists correctly",
				Dependencies:    []string{"Core Application Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Authentication Flow Testing",
				Description:     "Verify login/logout completeness, session timeout, protected routes, and CSRF protection.",
				ExpectedOutput:  "Authentication flows verified",
				SuccessCriteria: "Protected routes reject unauthenticated access; sessions expire correctly",
				Dependencies:    []string{"Core Application Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "API Integration Robustness",
				Description:     "Verify network failure handling, rate limiting, loading states, timeout handling, and user-facing error feedback.",
				ExpectedOutput:  "API calls degrade gracefully under failure",
				SuccessCriteria: "Failures surface useful feedback instead of broken UI",
				Dependencies:    []string{"Core Application Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Responsive & Accessibility Testing",
				Description:     "Verify mobile/tablet/desktop layouts, keyboard navigation, screen reader compatibility, and loading indicators.",
				ExpectedOutput:  "Layouts and accessibility verified across form factors",
				SuccessCriteria: "All workflows completable via keyboard; layouts adapt to each breakpoint",
				Dependencies:    []string{"Core Application Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Security Validation",
				Description:     "Verify input sanitization, authentication bypass attempts, and data exposure prevention.",
				ExpectedOutput:  "Security checks verified against common attack vectors",
				SuccessCriteria: "Bypass attempts fail and no sensitive data leaks to the client",
				Dependencies:    []string{"Core Application Implementation"},
				Complexity:      ComplexityMedium,
			},
		}
	case ArchetypeMobile:
		return []TaskSpec{
			{
				Name:            "Touch & Gesture Testing",
				Description:     "Verify tap/swipe/pinch/long-press handling, orientation changes, varied screen sizes, and conflicts with browser gestures.",
				ExpectedOutput:  "Touch interactions verified on target devices",
				SuccessCriteria: "Gestures register reliably without triggering browser navigation",
				Dependencies:    []string{"Core Mobile Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Device Integration Testing",
				Description:     "Verify camera/GPS/sensor access, offline functionality, app lifecycle handling, and platform-specific behaviors.",
				ExpectedOutput:  "Device features and offline mode verified",
				SuccessCriteria: "App recovers cleanly from backgrounding and connectivity loss",
				Dependencies:    []string{"Core Mobile Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Mobile Performance Testing",
				Description:     "Check battery usage, lower-end device performance, and behavior across network connectivity changes.",
				ExpectedOutput:  "Performance verified on constrained devices and networks",
				SuccessCriteria: "App stays usable on lower-end devices and recovers from connectivity drops",
				Dependencies:    []string{"Core Mobile Implementation"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Platform Compatibility",
				Description:     "Verify iOS Safari quirks, Android Chrome differences, and PWA install/runtime behavior.",
				ExpectedOutput:  "Consistent behavior across mobile platforms",
				SuccessCriteria: "Core workflows pass on both iOS Safari and Android Chrome",
				Dependencies:    []string{"Core Mobile Implementation"},
				Complexity:      ComplexityMedium,
			},
		}
	case ArchetypeAITool:
		return []TaskSpec{
			{
				Name:            "AI Integration Reliability",
				Description:     "Verify API failure handling, fallback mechanisms, rate limiting, and quota management.",
				ExpectedOutput:  "AI calls degrade gracefully under failure and quota pressure",
				SuccessCriteria: "Failures produce fallback output instead of crashes",
				Dependencies:    []string{"Core AI Integration"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "Data Processing Pipeline",
				Description:     "Verify input validation, preprocessing, output formatting, large input handling, and error recovery.",
				ExpectedOutput:  "Pipeline verified for normal, large, and malformed input",
				SuccessCriteria: "Oversized and malformed input is handled without data loss",
				Dependencies:    []string{"Core AI Integration"},
				Complexity:      ComplexityMedium,
			},
			{
				Name:            "User Experience Flow",
				Description:     "Verify real-time vs batch processing behavior, progress indicators, and user feedback during processing delays.",
				ExpectedOutput:  "Processing delays surface progress to the user",
				SuccessCriteria: "Long operations show progress and never appear frozen",
				Dependencies:    []string{"Core AI Integration"},
				Complexity:      ComplexitySimple,
			},
			{
				Name:            "AI Service Testing",
				Description:     "Verify model loading, initialization, versioning, and timeout handling.",
				ExpectedOutput:  "Model lifecycle verified from load through timeout",
				SuccessCriteria: "Slow or failed model loads surface errors instead of hanging",
				Dependencies:    []string{"Core AI Integration"},
				Complexity:      ComplexityMedium,
			},
		}
	default:
		return nil
	}
}

// universalChecklist returns the quality tasks appended to every plan.
func universalChecklist() []TaskSpec {
	return []TaskSpec{
		{
			Name:            "Cross-Browser Compatibility Testing",
			Description:     "Verify behavior in Chrome, Firefox, Safari, and Edge.",
			ExpectedOutput:  "Consistent behavior across the major browsers",
			SuccessCriteria: "Primary workflows pass in each target browser",
			Complexity:      ComplexitySimple,
		},
		{
			Name:            "Performance Optimization",
			Description:     "Check loading speed, memory usage, and responsiveness under load.",
			ExpectedOutput:  "Acceptable load time and steady memory profile",
			SuccessCriteria: "App remains responsive during typical usage",
			Complexity:      ComplexitySimple,
		},
		{
			Name:            "Error Handling & User Feedback",
			Description:     "Ensure graceful error handling, informative error messages, and loading states throughout the application.",
			ExpectedOutput:  "Errors surface clear, actionable feedback",
			SuccessCriteria: "No unhandled errors reach the user as raw stack traces or silent failures",
			Complexity:      ComplexitySimple,
		},
		{
			Name:            "Code Quality & Maintainability",
			Description:     "Ensure clean code structure, commented critical sections, and consistent patterns across files.",
			ExpectedOutput:  "Readable, consistently structured codebase",
			SuccessCriteria: "Critical sections are commented and naming stays consistent",
			Complexity:      ComplexitySimple,
		},
		{
			Name:            "Final Integration Testing",
			Description:     "Run end-to-end user workflows, exercise edge cases, and confirm production readiness.",
			ExpectedOutput:  "Polished, working application",
			SuccessCriteria: "All primary workflows complete without errors",
			Complexity:      ComplexityMedium,
		},
	}
}

// FallbackPlan is the minimal plan used when both LLM task generation and
// text parsing fail.
func FallbackPlan() []TaskSpec {
	return []TaskSpec{
		{
			Name:            "Project Setup",
			Description:     "Set up basic project structure and files",
			ExpectedOutput:  "Working project foundation",
			SuccessCriteria: "Files can be opened and basic structure exists",
		},
		{
			Name:            "Core Implementation",
			Description:     "Implement main functionality",
			ExpectedOutput:  "Working core features",
			SuccessCriteria: "Main features function as expected",
		},
		{
			Name:            "Testing and Polish",
			Description:     "Test functionality and add finishing touches",
			ExpectedOutput:  "Polished, working application",
			SuccessCriteria: "Application works without errors",
		},
	}
}
