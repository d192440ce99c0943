package matcher

import "strings"

// ParseQuery splits raw search text on spaces. Blank text yields an empty query.
func ParseQuery(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return strings.Fields(trimmed)
}

// Match reports whether every query token is a substring of one of the
// keywords or of body. An empty query never matches.
func Match(query []string, keywords []string, body string) bool {
	if len(query) == 0 {
		return false
	}
	for _, token := range query {
		if !matchToken(token, keywords, body) {
			return false
		}
	}
	return true
}

func matchToken(token string, keywords []string, body string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, token) {
			return true
		}
	}
	return strings.Contains(body, token)
}

// Equal reports whether two queries hold the same tokens in the same order.
func Equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
