package ai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetqa/internal/logging"
)

func TestRenderPrompt_Embedded(t *testing.T) {
	pm := NewPromptManager("", logging.Discard())

	out, err := pm.RenderPrompt(PromptQuestion, map[string]string{
		"SHEET_COUNT": "2",
		"SHEETS":      "(sheets)",
		"QUESTION":    "what is {SHEETS}?",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "The workbook has 2 sheet(s).")
	assert.Contains(t, out, "Question: what is {SHEETS}?")
}

func TestLoadPrompt_DirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.txt"), []byte("custom {DIALECT}"), 0o644))
	pm := NewPromptManager(dir, logging.Discard())

	out, err := pm.RenderPrompt(PromptSystem, map[string]string{"DIALECT": "jq"})
	require.NoError(t, err)
	assert.Equal(t, "custom jq", out)

	// Not overridden: falls back to embedded
	rules, err := pm.LoadPrompt("rules_sql")
	require.NoError(t, err)
	assert.Contains(t, rules, "SELECT")

	_, err = pm.LoadPrompt("missing")
	assert.Error(t, err)
}
