package core

import (
	"regexp"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// envRegex matches {{ env.NAME }} placeholders.
var envRegex = regexp.MustCompile(`\{\{\s*env\.([A-Za-z0-9_]+)\s*\}\}`)

// ResolveEnvPlaceholders substitutes every {{ env.NAME }} placeholder in
// input. Unset variables resolve to the empty string and are returned in
// missing so the caller can warn about them.
func ResolveEnvPlaceholders(input string, lookup LookupFunc) (resolved string, missing []string) {
	resolved = envRegex.ReplaceAllStringFunc(input, func(match string) string {
		key := envRegex.FindStringSubmatch(match)[1]
		val, exists := lookup(key)
		if !exists {
			missing = append(missing, key)
		}
		return val
	})
	return resolved, missing
}

// fallbackEnv names the variables consulted when the config leaves the
// credential or the assistant identity empty, per provider type.
var fallbackEnv = map[string]struct {
	APIKey      string
	AssistantID string
}{
	ProviderOpenAI: {APIKey: "OPENAI_API_KEY", AssistantID: "OPENAI_ASSISTANT_ID"},
}

// FallbackAPIKeyEnv is the variable holding the API key for providerType.
func FallbackAPIKeyEnv(providerType string) string {
	return fallbackEnv[providerType].APIKey
}

// FallbackAssistantEnv is the variable holding the assistant id for providerType.
func FallbackAssistantEnv(providerType string) string {
	return fallbackEnv[providerType].AssistantID
}
