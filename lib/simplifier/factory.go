package simplifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAPIKeyRequired is returned when a hosted backend is selected without an
// API key in the environment or config.
var ErrAPIKeyRequired = errors.New("API key required")

// ErrUnknownBackend is returned for backend names not in the catalogue.
var ErrUnknownBackend = errors.New("unknown simplifier backend")

// Config selects and parameterises a backend. Model, APIKey and BaseURL only
// apply to the hosted backends, Replacements only to the rule based one.
type Config struct {
	Backend      string `mapstructure:"backend"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Replacements string `mapstructure:"replacements"`
}

/**
New constructs the backend named by config.Backend. An empty name selects the
rule based backend so the service runs without any API key.
**/
func New(config Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(config.Backend)) {
	case "", "rule-based", "rulebased", "dummy":
		if config.Replacements != "" {
			replacements, err := LoadReplacements(config.Replacements)
			if err != nil {
				return nil, err
			}
			return NewRuleBased(replacements), nil
		}
		return NewRuleBased(nil), nil
	case "anthropic", "claude":
		return NewAnthropic(config.Model, config.APIKey)
	case "openai":
		return NewOpenAI(config.Model, config.APIKey, config.BaseURL)
	default:
		return nil, fmt.Errorf("%w %q: choose from rule-based, anthropic, openai", ErrUnknownBackend, config.Backend)
	}
}

// Info describes one entry of the backend catalogue.
type Info struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	RequiresAPIKey bool   `json:"requires_api_key"`
}

// Backends lists the available backends for the API's discovery endpoint.
func Backends() []Info {
	return []Info{
		{
			Name:           "rule-based",
			Description:    "Deterministic dictionary replacements, no API key needed",
			RequiresAPIKey: false,
		},
		{
			Name:           "anthropic",
			Description:    "Anthropic Claude models",
			RequiresAPIKey: true,
		},
		{
			Name:           "openai",
			Description:    "OpenAI GPT models and compatible endpoints",
			RequiresAPIKey: true,
		},
	}
}
