// Package artifacts extracts code files from LLM output and writes them into
// a project directory.
package artifacts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// File is a single extracted code artifact.
type File struct {
	Name     string
	Language string
	Content  string
}

var (
	fenceRe = regexp.MustCompile("^```\\s*([^`\\s]*)\\s*([^`\\s]*)\\s*$")

	// boldNameRe matches a "**index.html**" style line preceding a fence.
	boldNameRe = regexp.MustCompile(`\*\*([\w./-]+\.[A-Za-z0-9]+)\*\*`)

	// labelNameRe matches "File: index.html" / "Filename: game.js" lines.
	labelNameRe = regexp.MustCompile(`(?i)^(?:file(?:name)?)\s*:\s*` + "`?" + `([\w./-]+\.[A-Za-z0-9]+)` + "`?")
)

// fallbackNames maps fence languages to default filenames for unnamed blocks.
var fallbackNames = map[string]string{
	"html":       "main.html",
	"css":        "styles.css",
	"javascript": "script.js",
	"js":         "script.js",
	"typescript": "script.ts",
	"python":     "main.py",
	"go":         "main.go",
	"json":       "data.json",
	"yaml":       "config.yaml",
	"sh":         "run.sh",
	"bash":       "run.sh",
}

// Extract pulls fenced code blocks out of text. A block's filename comes from
// its fence info string, or from a "**name.ext**" / "File: name.ext" line
// just above the fence; unnamed blocks get a language-derived default.
func Extract(text string) []File {
	var files []File
	lines := strings.Split(text, "\n")
	used := map[string]int{}

	for i := 0; i < len(lines); i++ {
		m := fenceRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}

		lang, name := m[1], m[2]
		if name == "" && strings.Contains(lang, ".") {
			// Info string is a bare filename, e.g. ```index.html
			name = lang
			lang = languageForName(name)
		}
		if name == "" {
			name = nameFromContext(lines, i)
		}

		var body []string
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				end = j
				break
			}
			body = append(body, lines[j])
		}
		if end < 0 {
			break
		}
		i = end

		content := strings.Join(body, "\n")
		if strings.TrimSpace(content) == "" {
			continue
		}

		if name == "" {
			name = defaultName(lang)
		}
		name = uniqueName(name, used)

		files = append(files, File{Name: name, Language: lang, Content: content})
	}

	return files
}

// nameFromContext looks back over the nearest non-blank lines above the fence
// for a filename hint.
func nameFromContext(lines []string, fence int) string {
	for j := fence - 1; j >= 0 && j >= fence-3; j-- {
		line := strings.TrimSpace(lines[j])
		if line == "" {
			continue
		}
		if m := labelNameRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if m := boldNameRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		return ""
	}
	return ""
}

func defaultName(lang string) string {
	if name, ok := fallbackNames[strings.ToLower(lang)]; ok {
		return name
	}
	if lang != "" {
		return "snippet." + strings.ToLower(lang)
	}
	return "snippet.txt"
}

func languageForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return "html"
	case ".css":
		return "css"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// uniqueName disambiguates repeated filenames: script.js, script_2.js, ...
func uniqueName(name string, used map[string]int) string {
	used[name]++
	if used[name] == 1 {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", base, used[name], ext)
}

// WriteFiles writes extracted files under dir, creating it if needed. Names
// that resolve outside dir are rejected. Returns the paths written.
func WriteFiles(dir string, files []File) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	var written []string
	for _, file := range files {
		path, err := safePath(dir, file.Name)
		if err != nil {
			slog.Warn("Skipping artifact with unsafe path", "name", file.Name, "error", err)
			continue
		}

		if sub := filepath.Dir(path); sub != dir {
			if err := os.MkdirAll(sub, 0o755); err != nil {
				return written, fmt.Errorf("failed to create directory for %s: %w", file.Name, err)
			}
		}

		content := file.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
		written = append(written, path)
	}

	return written, nil
}

// safePath resolves name under dir and rejects traversal outside it.
func safePath(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path not allowed: %s", name)
	}
	path := filepath.Join(dir, filepath.Clean(name))

	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes project directory: %s", name)
	}
	return path, nil
}
