package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "(not set)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "empty input returns default",
			input:      "",
			maxVal:     3,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "valid choice",
			input:      "2",
			maxVal:     3,
			defaultVal: 1,
			expected:   2,
		},
		{
			name:       "out of range returns default",
			input:      "7",
			maxVal:     3,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "zero returns default",
			input:      "0",
			maxVal:     3,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "non-numeric returns default",
			input:      "abc",
			maxVal:     3,
			defaultVal: 2,
			expected:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd_Unconfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[Generator]")
	assert.Contains(t, out, "Target size: 500 characters")
	assert.Contains(t, out, "Overlap: 50 characters")
	assert.Contains(t, out, "K: 4")
	assert.Contains(t, out, "Max context tokens: 2048")
	assert.Contains(t, out, "Run 'lomn settings wizard' to finish configuration.")
}

func TestSettingsShowCmd_Configured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  "http://localhost:11434",
	}
	settings.Generator = domain.GeneratorSettings{
		Provider:       domain.AIProviderAnthropic,
		Model:          "claude-sonnet-4-5",
		APIKey:         "sk-ant-12345678abcd",
		TimeoutSeconds: 120,
	}
	settings.LexiconPath = "/etc/lomn/lexicon.toml"
	settingsService = &mockSettingsService{settings: &settings}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Ollama (local)")
	assert.Contains(t, out, "Base URL: http://localhost:11434")
	assert.Contains(t, out, "Anthropic (cloud)")
	assert.Contains(t, out, "API Key: sk-a...abcd")
	assert.Contains(t, out, "Timeout: 120s")
	assert.Contains(t, out, "Lexicon: /etc/lomn/lexicon.toml")
	assert.NotContains(t, out, "sk-ant-12345678abcd")
	assert.NotContains(t, out, "Run 'lomn settings wizard'")
}

func TestSettingsProviders(t *testing.T) {
	assert.Equal(t,
		[]domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI},
		embeddingProviders())
	assert.Equal(t,
		[]domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderAnthropic},
		generatorProviders())
}
