package core

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// PromptData is what a prompt template can reference.
type PromptData struct {
	Source   string
	Language string
	FileName string
}

var languageByExt = map[string]string{
	".py":   "python",
	".java": "java",
	".js":   "javascript",
	".ts":   "typescript",
	".cs":   "csharp",
	".rb":   "ruby",
	".kt":   "kotlin",
}

// LanguageForPath names the code fence language for a source file. Unknown
// extensions fall back to python, the format the converter assistant expects.
func LanguageForPath(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "python"
}

// ParsePrompt compiles a prompt template with the sprig function map.
// An empty text selects DefaultPrompt.
func ParsePrompt(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPrompt
	}
	tmpl, err := template.New("prompt").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	return tmpl, nil
}

func RenderPrompt(tmpl *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt template: %w", err)
	}
	return buf.String(), nil
}
