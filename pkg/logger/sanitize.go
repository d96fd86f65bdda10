package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	// Keep first char of the local part
	if len(local) > 1 {
		local = local[:1] + strings.Repeat("*", len(local)-1)
	}

	// Keep the TLD only
	labels := strings.Split(domain, ".")
	for i := 0; i < len(labels)-1; i++ {
		labels[i] = strings.Repeat("*", len(labels[i]))
	}

	return local + "@" + strings.Join(labels, ".")
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// sensitiveParams are query parameter names whose values must not reach logs.
// Search terms are included since operators routinely search by email.
var sensitiveParams = map[string]bool{
	"password":    true,
	"token":       true,
	"secret":      true,
	"api_key":     true,
	"apikey":      true,
	"email":       true,
	"search_term": true,
	"auth":        true,
}

// SanitizeQueryString reports whether rawQuery names a sensitive parameter,
// in which case the whole query string should be redacted. A query that
// cannot be parsed is treated as sensitive.
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return true
	}
	for key := range values {
		if sensitiveParams[strings.ToLower(key)] {
			return true
		}
	}
	return false
}
