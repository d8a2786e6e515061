package simplifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSelectsRuleBased(t *testing.T) {
	for _, backend := range []string{"", "rule-based", "rulebased", "dummy", "Rule-Based", " rule-based "} {
		client, err := New(Config{Backend: backend})
		assert.NoError(t, err)
		assert.IsType(t, &RuleBased{}, client)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "huggingface"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.Contains(t, err.Error(), "huggingface")
}

func TestNewAnthropicRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := New(Config{Backend: "anthropic"})
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestNewAnthropicFromConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	client, err := New(Config{Backend: "claude", APIKey: "test-key"})
	assert.NoError(t, err)
	assert.IsType(t, &Anthropic{}, client)
	assert.Equal(t, defaultAnthropicModel, string(client.(*Anthropic).model))
}

func TestNewOpenAIRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := New(Config{Backend: "openai"})
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestNewOpenAIFromConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := New(Config{Backend: "openai", APIKey: "test-key", Model: "gpt-4o"})
	assert.NoError(t, err)
	assert.IsType(t, &OpenAI{}, client)
	assert.Equal(t, "gpt-4o", client.(*OpenAI).model)
}

func TestNewRuleBasedFromReplacementsFile(t *testing.T) {
	_, err := New(Config{Backend: "rule-based", Replacements: "this/path/does/not/exist.yml"})
	assert.Error(t, err)
}

func TestBackends(t *testing.T) {
	backends := Backends()

	assert.Len(t, backends, 3)
	assert.Equal(t, "rule-based", backends[0].Name)
	assert.False(t, backends[0].RequiresAPIKey)
	assert.Equal(t, "anthropic", backends[1].Name)
	assert.True(t, backends[1].RequiresAPIKey)
	assert.Equal(t, "openai", backends[2].Name)
	assert.True(t, backends[2].RequiresAPIKey)
}
