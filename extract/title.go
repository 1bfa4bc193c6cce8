package extract

import (
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Title derives a display title for a document: YAML frontmatter "title"
// first, then the first markdown header, then the title-cased filename stem.
func Title(filename, text string) string {
	if t := frontmatterTitle(text); t != "" {
		return t
	}
	if t := firstHeader(text); t != "" {
		return t
	}
	return titleFromFilename(filename)
}

// frontmatterTitle reads the title field from a leading YAML frontmatter
// block delimited by "---" lines.
func frontmatterTitle(text string) string {
	if !strings.HasPrefix(text, "---\n") && !strings.HasPrefix(text, "---\r\n") {
		return ""
	}
	rest := text[strings.Index(text, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return ""
	}

	var meta struct {
		Title string `yaml:"title"`
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return ""
	}
	return strings.TrimSpace(meta.Title)
}

func firstHeader(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// titleFromFilename turns "getting-started_guide.md" into "Getting Started
// Guide".
func titleFromFilename(filename string) string {
	stem := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)

	words := strings.Fields(stem)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}
