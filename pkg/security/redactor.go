package security

import (
	"sort"
	"strings"
)

const mask = "********"

// Redactor masks credential values in log output.
type Redactor struct {
	Secrets []string
}

// NewRedactor collects the non-empty secret values, longest first so a
// secret that contains another is masked whole.
func NewRedactor(secrets ...string) *Redactor {
	var secretValues []string
	for _, s := range secrets {
		if strings.TrimSpace(s) != "" {
			secretValues = append(secretValues, s)
		}
	}
	sort.SliceStable(secretValues, func(i, j int) bool {
		return len(secretValues[i]) > len(secretValues[j])
	})
	return &Redactor{
		Secrets: secretValues,
	}
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	for _, secret := range r.Secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, mask)
	}
	return s
}
