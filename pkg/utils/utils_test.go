package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"tree":{}}`, `{"tree":{}}`},
		{"fenced", "```json\n{\"tree\":{}}\n```", `{"tree":{}}`},
		{"think block", "<think>plan the story {maybe}</think>\n{\"tree\":{}}", `{"tree":{}}`},
		{"leading prose", "Here is your story:\n{\"tree\":{}}\nEnjoy!", `{"tree":{}}`},
		{"no object", "I cannot help with that.", ""},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.input))
		})
	}
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("  {\"a\":1}  "))
}

func TestLimitStr(t *testing.T) {
	assert.Equal(t, "abc", LimitStr("abc", 5))
	assert.Equal(t, "ab...", LimitStr("abcdef", 2))
	assert.Equal(t, "żó...", LimitStr("żółw", 2))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c_d", SanitizeFilename(" a/b\\c:d "))
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "value.json")

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, Save(path, payload{Name: "forest", Count: 4}))
	assert.FileExists(t, path)

	got, err := Load[payload](path)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "forest", Count: 4}, got)

	_, err = Load[payload](filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
