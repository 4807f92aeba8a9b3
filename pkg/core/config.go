package core

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"

	DefaultConfigFile   = "virtuoso.yml"
	DefaultOutputFile   = "virtuoso_steps.json"
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 10 * time.Minute

	DefaultPrompt = "Convert this Selenium test script to Virtuoso test steps following the Selenium to Virtuoso Converter format:\n\n```{{ .Language }}\n{{ .Source }}\n```"
)

type ProviderConfig struct {
	Type        string `yaml:"type"`
	APIKey      string `yaml:"api_key"`
	AssistantID string `yaml:"assistant_id"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// PollingConfig bounds the wait on a remote run. Durations use
// time.ParseDuration syntax; an empty or "0" timeout and a zero attempt
// count disable the respective bound.
type PollingConfig struct {
	Interval    string `yaml:"interval,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty"`
}

type StorageConfig struct {
	Region string `yaml:"region,omitempty"`
}

type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Polling  PollingConfig  `yaml:"polling"`
	Prompt   string         `yaml:"prompt,omitempty"`
	Output   string         `yaml:"output,omitempty"`
	Storage  StorageConfig  `yaml:"storage,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Type:        ProviderOpenAI,
			APIKey:      "{{ env.OPENAI_API_KEY }}",
			AssistantID: "{{ env.OPENAI_ASSISTANT_ID }}",
		},
		Polling: PollingConfig{
			Interval: DefaultPollInterval.String(),
			Timeout:  DefaultPollTimeout.String(),
		},
		Prompt: DefaultPrompt,
		Output: DefaultOutputFile,
	}
}

// LoadConfigFromFile overlays the YAML file at path on DefaultConfig and
// validates the result. Placeholders are left unresolved.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML from %q: %w", path, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return cfg, nil
}

// ResolveCredentials expands env placeholders in the provider section and
// falls back to the provider's conventional variables for empty values.
// It returns the names of referenced variables that were not set.
func (c *Config) ResolveCredentials(lookup LookupFunc) []string {
	var missing []string
	resolve := func(s string) string {
		out, m := ResolveEnvPlaceholders(s, lookup)
		missing = append(missing, m...)
		return out
	}

	c.Provider.APIKey = resolve(c.Provider.APIKey)
	c.Provider.AssistantID = resolve(c.Provider.AssistantID)
	c.Provider.BaseURL = resolve(c.Provider.BaseURL)
	c.Storage.Region = resolve(c.Storage.Region)

	if c.Provider.APIKey == "" {
		if key := FallbackAPIKeyEnv(c.Provider.Type); key != "" {
			c.Provider.APIKey, _ = lookup(key)
		}
	}
	if c.Provider.AssistantID == "" {
		if key := FallbackAssistantEnv(c.Provider.Type); key != "" {
			c.Provider.AssistantID, _ = lookup(key)
		}
	}

	return missing
}

// PollBounds returns the parsed polling interval and timeout.
func (c *Config) PollBounds() (interval, timeout time.Duration, err error) {
	interval = DefaultPollInterval
	if c.Polling.Interval != "" {
		interval, err = time.ParseDuration(c.Polling.Interval)
		if err != nil {
			return 0, 0, fmt.Errorf("parsing polling.interval %q: %w", c.Polling.Interval, err)
		}
	}
	if c.Polling.Timeout != "" {
		timeout, err = time.ParseDuration(c.Polling.Timeout)
		if err != nil {
			return 0, 0, fmt.Errorf("parsing polling.timeout %q: %w", c.Polling.Timeout, err)
		}
	}
	return interval, timeout, nil
}

// ValidateConfig checks the structure of a config before credentials are
// resolved.
func ValidateConfig(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Provider.Type == "" {
		return fmt.Errorf("config is missing 'provider.type'")
	}

	interval, timeout, err := c.PollBounds()
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("polling.interval must be greater than 0, got %s", interval)
	}
	if timeout < 0 {
		return fmt.Errorf("polling.timeout must not be negative, got %s", timeout)
	}
	if c.Polling.MaxAttempts < 0 {
		return fmt.Errorf("polling.max_attempts must not be less than 0")
	}

	if _, err := ParsePrompt(c.Prompt); err != nil {
		return err
	}

	return nil
}

// ValidateCredentials checks that resolution produced the values needed to
// talk to the provider.
func ValidateCredentials(c *Config) error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("API key for provider %q is not defined in the config or the %s environment variable",
			c.Provider.Type, FallbackAPIKeyEnv(c.Provider.Type))
	}
	if c.Provider.AssistantID == "" {
		return fmt.Errorf("assistant id for provider %q is not defined in the config or the %s environment variable",
			c.Provider.Type, FallbackAssistantEnv(c.Provider.Type))
	}
	return nil
}
