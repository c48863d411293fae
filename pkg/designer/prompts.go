package designer

import (
	"strings"
	"text/template"

	"github.com/brettstark73/crewbuilder/pkg/project"
)

const analyzerSystemPrompt = `You are a senior technical analyst with 15+ years experience across
web development, game development, mobile apps, AI/ML projects, and enterprise software.
You excel at quickly understanding project requirements and determining:
- What type of project this is (game, web app, mobile app, AI tool, etc.)
- What technology stack is most appropriate
- What development phases and tasks are needed
- What potential challenges and requirements exist

SPECIAL EXPERTISE: You understand common failure patterns and their prevention:

GAMES: Memory leaks from uncleaned intervals/requestAnimationFrame, audio lifecycle issues,
input event cleanup, mobile browser quirks, canvas rendering problems, game state corruption

WEB APPS: Form validation bypasses, authentication flow breaks, API integration failures,
XSS vulnerabilities, responsive design issues, accessibility problems

MOBILE: Touch event conflicts, orientation handling, device integration failures,
platform-specific behaviors, performance on lower-end devices

AI TOOLS: Model loading failures, rate limiting issues, input/output validation problems,
fallback mechanism absence, user experience during processing delays

You create detailed project analysis that guides the entire development process.`

const executorSystemPrompt = `You are an expert developer with deep experience in:
- HTML5 Canvas game development
- JavaScript game programming
- Web application development
- Frontend and backend technologies
- Creating working, polished applications

You focus on writing clean, functional code that actually works when tested.
You pay attention to details like event handling, game loops, collision detection,
and user interaction. You always deliver working implementations.`

var analysisPromptTmpl = template.Must(template.New("analysis").Parse(
	`Analyze this project idea and create a comprehensive project analysis:

PROJECT: {{.Idea}}
TARGET AUDIENCE: {{.Audience}}
TIMELINE: {{.Timeline}}
DETECTED ARCHETYPE: {{.Archetype}}

Provide a detailed analysis covering:

1. PROJECT TYPE CLASSIFICATION:
   - Is this a game, web application, mobile app, AI tool, or other?
   - What are the core functional requirements?
   - What are the technical requirements?

2. TECHNOLOGY STACK RECOMMENDATION:
   - What technologies are most appropriate?
   - Front-end requirements (HTML5 Canvas, React, etc.)
   - Back-end requirements (if any)
   - Database requirements (if any)
   - Third-party services needed

3. DEVELOPMENT APPROACH:
   - Should this be a single HTML file, multi-file project, or complex application?
   - What are the main development phases?
   - What are the critical features vs nice-to-have features?

4. SPECIFIC REQUIREMENTS:
   - For games: game loop, rendering, input handling, collision detection, scoring, levels
   - For web apps: database design, API endpoints, authentication, UI components
   - For mobile apps: platform requirements, native features, offline capability
   - For AI tools: model requirements, data processing, user interface

5. RECOMMENDED TASK BREAKDOWN:
   - What specific development tasks should be created?
   - What order should tasks be completed in?
   - What are the deliverables for each task?

6. POTENTIAL CHALLENGES:
   - What technical challenges might arise?
   - What are the common pitfalls for this type of project?
   - What should be prioritized to ensure a working result?

Format your response as a detailed analysis that will guide task creation.`))

var taskPromptTmpl = template.Must(template.New("tasks").Parse(
	`Based on this project analysis, create specific development tasks:

ANALYSIS RESULTS:
{{.AnalysisText}}

PROJECT: {{.Idea}}

Create a detailed list of development tasks that will result in a WORKING implementation.
Each task should be:
- Specific and actionable
- Focused on creating working code/features
- Appropriate for the project type identified in the analysis
- Designed to produce testable deliverables

For each task, provide:
1. TASK NAME: Clear, descriptive name
2. DESCRIPTION: Detailed description of what needs to be built
3. EXPECTED OUTPUT: Specific deliverable (working file, component, feature)
4. SUCCESS CRITERIA: How to verify the task is complete and working
5. DEPENDENCIES: What other tasks must be completed first
6. ESTIMATED COMPLEXITY: simple/medium/complex
{{if .ValidationGuidance}}
CRITICAL TESTING PATTERNS FOR THIS PROJECT TYPE — always include these validation tasks:
{{.ValidationGuidance}}{{end}}
UNIVERSAL QUALITY CHECKLIST — always include these for ALL project types:
- Cross-Browser Compatibility Testing: Chrome, Firefox, Safari, Edge testing
- Performance Optimization: loading speed, memory usage, responsiveness under load
- Error Handling & User Feedback: graceful error handling, informative messages, loading states
- Code Quality & Maintainability: clean code structure, commented critical sections, consistent patterns
- Final Integration Testing: end-to-end workflows, edge case handling, production readiness

Ensure tasks will result in a WORKING, TESTABLE implementation that matches the project requirements.

Respond with a JSON object containing a "tasks" array of task objects.`))

var executionPromptTmpl = template.Must(template.New("execution").Parse(
	`TASK: {{.Task.Name}}

DESCRIPTION: {{.Task.Description}}

EXPECTED OUTPUT: {{.Task.ExpectedOutput}}

SUCCESS CRITERIA: {{.Task.SuccessCriteria}}

PROJECT CONTEXT: {{.Idea}}

IMPORTANT: Create working, testable code. Focus on functionality over perfection.
If this is a game, ensure the game loop, rendering, and interaction work properly.
If this is a web app, ensure the UI and functionality work as expected.

Provide complete, runnable code that can be tested immediately. Emit each file as a
fenced code block whose info string names the file, e.g. ` + "```" + `html index.html` + "```" + `.`))

// validationGuidance summarizes the archetype's validation task templates for
// the task generation prompt, so the LLM proposes the same safety net the
// template plan carries.
func validationGuidance(archetype project.Archetype) string {
	var b strings.Builder
	for _, task := range project.ValidationTasks(archetype) {
		b.WriteString("- ")
		b.WriteString(task.Name)
		b.WriteString(": ")
		b.WriteString(task.Description)
		b.WriteString("\n")
	}
	return b.String()
}
