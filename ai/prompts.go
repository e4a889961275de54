package ai

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

//go:embed prompts/*.txt
var embeddedPrompts embed.FS

// PromptManager loads prompt templates. Files in PromptsDir override the
// embedded templates of the same name.
type PromptManager struct {
	PromptsDir string
	logger     *slog.Logger
}

// NewPromptManager creates a prompt manager; an empty promptsDir uses only
// the embedded templates
func NewPromptManager(promptsDir string, logger *slog.Logger) *PromptManager {
	logger = logger.With("component", "prompt_manager")
	if promptsDir != "" {
		logger.Info("prompt overrides enabled", "dir", promptsDir)
	}
	return &PromptManager{PromptsDir: promptsDir, logger: logger}
}

// LoadPrompt loads a prompt template by name
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	if pm.PromptsDir != "" {
		path := filepath.Join(pm.PromptsDir, name+".txt")
		content, err := os.ReadFile(path)
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
		}
	}

	content, err := embeddedPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	return string(content), nil
}

// RenderPrompt replaces {PLACEHOLDER} with values
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, 2*len(replacements))
	for placeholder, value := range replacements {
		pairs = append(pairs, "{"+placeholder+"}", value)
	}
	// A single pass keeps placeholders inside values (user questions,
	// cell text) from being expanded.
	return strings.NewReplacer(pairs...).Replace(template), nil
}
