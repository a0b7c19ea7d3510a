package employee

import "strings"

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
