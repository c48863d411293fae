package project

import (
	"strings"
	"unicode"
)

// signal is a weighted keyword or phrase pointing at an archetype.
// Phrases (containing a space) match as substrings of the normalized
// description; single words match whole words only.
type signal struct {
	text   string
	weight int
}

var archetypeSignals = map[Archetype][]signal{
	ArchetypeGame: {
		{"space invaders", 4},
		{"game loop", 4},
		{"high score", 3},
		{"collision detection", 3},
		{"enemy waves", 3},
		{"arcade", 3},
		{"platformer", 3},
		{"shooter", 3},
		{"tetris", 3},
		{"snake", 2},
		{"pong", 3},
		{"game", 2},
		{"sprite", 2},
		{"canvas", 2},
		{"player", 1},
		{"enemy", 1},
		{"enemies", 1},
		{"score", 1},
		{"scoring", 1},
		{"level", 1},
		{"levels", 1},
	},
	ArchetypeWebApp: {
		{"web app", 4},
		{"web application", 4},
		{"landing page", 3},
		{"user accounts", 3},
		{"rest api", 3},
		{"drag and drop", 2},
		{"website", 3},
		{"webapp", 3},
		{"saas", 3},
		{"dashboard", 2},
		{"crud", 2},
		{"login", 2},
		{"authentication", 2},
		{"database", 2},
		{"blog", 2},
		{"form", 1},
		{"forms", 1},
		{"frontend", 1},
		{"backend", 1},
		{"responsive", 1},
	},
	ArchetypeMobile: {
		{"mobile app", 4},
		{"app store", 3},
		{"push notification", 3},
		{"push notifications", 3},
		{"ios", 3},
		{"android", 3},
		{"pwa", 2},
		{"touch", 2},
		{"swipe", 2},
		{"gesture", 2},
		{"offline", 1},
		{"phone", 1},
		{"tablet", 1},
	},
	ArchetypeAITool: {
		{"machine learning", 4},
		{"ai tool", 4},
		{"ai assistant", 4},
		{"language model", 3},
		{"sentiment analysis", 3},
		{"chatbot", 3},
		{"llm", 3},
		{"gpt", 3},
		{"summarizer", 3},
		{"classifier", 2},
		{"embedding", 2},
		{"embeddings", 2},
		{"openai", 2},
		{"model", 1},
		{"ai", 1},
	},
	ArchetypeTool: {
		{"command line", 3},
		{"cli", 3},
		{"converter", 2},
		{"calculator", 2},
		{"generator", 2},
		{"parser", 2},
		{"automation", 2},
		{"utility", 2},
		{"script", 1},
		{"tool", 1},
	},
}

func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Classify determines the project archetype for a free-text description.
//
// Signals are matched against the normalized description: phrases as
// substrings, single words as whole words. The archetype with the highest
// weighted score wins; ties resolve by precedence (game > webapp > mobile >
// aitool > tool). A description with no signals classifies as tool.
func Classify(description string) Classification {
	normalized := normalize(description)
	words := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		words[w] = true
	}

	result := Classification{
		Scores: make(map[Archetype]int, len(precedence)),
	}

	for _, archetype := range precedence {
		for _, sig := range archetypeSignals[archetype] {
			matched := false
			if strings.Contains(sig.text, " ") {
				matched = strings.Contains(normalized, sig.text)
			} else {
				matched = words[sig.text]
			}
			if matched {
				result.Scores[archetype] += sig.weight
				result.Signals = append(result.Signals, sig.text)
			}
		}
	}

	best := ArchetypeTool
	bestScore := 0
	for _, archetype := range precedence {
		if score := result.Scores[archetype]; score > bestScore {
			best = archetype
			bestScore = score
		}
	}

	result.Archetype = best
	return result
}
