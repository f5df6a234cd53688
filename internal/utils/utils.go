package utils

import (
	"strings"
)

// NormalizeCenterID trims surrounding whitespace and collapses inner runs of
// whitespace to a single space.
func NormalizeCenterID(id string) string {
	return strings.Join(strings.Fields(id), " ")
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value, returning "" when the scheme does not match.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
