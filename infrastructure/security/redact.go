// Package security keeps account secrets out of the logs.
package security

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Redacted replaces every masked value.
const Redacted = "[REDACTED]"

// MinSecretLength is the shortest secret masked inside free text. Shorter
// values would match inside ordinary words; they are covered by key redaction.
const MinSecretLength = 4

var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "cookie", "auth",
}

// IsSensitiveField reports whether a log field key likely holds a secret.
func IsSensitiveField(key string) bool {
	lowerKey := strings.ToLower(key)
	lowerKey = strings.NewReplacer("-", "", "_", "", " ", "").Replace(lowerKey)

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}

// RedactHook masks sensitive fields and known secret values on every entry.
type RedactHook struct {
	secrets []string
}

// NewRedactHook - creates a hook that also masks each secret of at least
// MinSecretLength characters wherever it shows up in a message or string field
func NewRedactHook(secrets ...string) *RedactHook {
	h := &RedactHook{}
	for _, s := range secrets {
		if s = strings.TrimSpace(s); len([]rune(s)) >= MinSecretLength {
			h.secrets = append(h.secrets, s)
		}
	}
	return h
}

// Levels - the hook runs for every level
func (h *RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire - rewrites the entry in place before it is formatted
func (h *RedactHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.mask(entry.Message)

	for key, value := range entry.Data {
		if IsSensitiveField(key) {
			entry.Data[key] = Redacted
			continue
		}
		switch v := value.(type) {
		case string:
			entry.Data[key] = h.mask(v)
		case error:
			if masked := h.mask(v.Error()); masked != v.Error() {
				entry.Data[key] = masked
			}
		}
	}
	return nil
}

func (h *RedactHook) mask(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, Redacted)
	}
	return s
}
