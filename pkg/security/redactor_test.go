package security_test

import (
	"testing"

	"github.com/arnavsurve/virtuoso-converter/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestRedactor_Redact(t *testing.T) {
	tests := []struct {
		name    string
		secrets []string
		input   string
		want    string
	}{
		{
			name:    "api key in an error message",
			secrets: []string{"sk-proj-abc123"},
			input:   "401 Unauthorized: invalid key sk-proj-abc123",
			want:    "401 Unauthorized: invalid key ********",
		},
		{
			name:    "multiple occurrences",
			secrets: []string{"abcdef"},
			input:   "key abcdef retried with abcdef",
			want:    "key ******** retried with ********",
		},
		{
			name:    "overlapping secrets mask the longest first",
			secrets: []string{"secret", "supersecret"},
			input:   "This contains supersecret and secret values",
			want:    "This contains ******** and ******** values",
		},
		{
			name:    "blank secrets are ignored",
			secrets: []string{"", "  "},
			input:   "Nothing to hide",
			want:    "Nothing to hide",
		},
		{
			name:    "secret not present",
			secrets: []string{"notused"},
			input:   "This string doesn't contain the secret",
			want:    "This string doesn't contain the secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := security.NewRedactor(tt.secrets...)
			assert.Equal(t, tt.want, r.Redact(tt.input))
		})
	}
}

func TestNewRedactor_OrdersByLength(t *testing.T) {
	r := security.NewRedactor("ab", "", "abcd", "abc")
	assert.Equal(t, []string{"abcd", "abc", "ab"}, r.Secrets)
}

func TestRedactor_NilIsPassthrough(t *testing.T) {
	var r *security.Redactor
	assert.Equal(t, "Original string", r.Redact("Original string"))
}
