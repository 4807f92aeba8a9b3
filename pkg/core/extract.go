package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoArray is returned when a response holds no bracket-delimited array.
var ErrNoArray = errors.New("no JSON array found in response")

// ExtractJSONArray returns the text from the first '[' to the last ']'
// inclusive. Replies holding more than one bracketed value (arrays in prose,
// nested examples) are not disambiguated.
func ExtractJSONArray(text string) (string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return "", ErrNoArray
	}
	return text[start : end+1], nil
}

// ParseCandidate decodes extracted JSON into generic values for validation.
func ParseCandidate(raw string) (any, error) {
	var candidate any
	if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
		return nil, fmt.Errorf("decoding JSON array: %w", err)
	}
	return candidate, nil
}

// FormatSteps re-indents the extracted JSON with two spaces, keeping the
// assistant's key order. Only whitespace changes: duplicate keys and number
// spellings such as 1e0 are written as the assistant sent them, whereas the
// decoded value from ParseCandidate keeps the last duplicate only.
func FormatSteps(raw string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(raw)), "", "  "); err != nil {
		return nil, fmt.Errorf("formatting steps JSON: %w", err)
	}
	return buf.Bytes(), nil
}
