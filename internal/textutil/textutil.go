package textutil

import (
	"strings"
	"unicode"
)

const maxTitleLength = 50

// SanitizeTitle converts a lecture title into a filesystem-safe directory
// component. Only letters, digits, spaces, dashes, and underscores survive;
// the result is trimmed and capped at 50 characters.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if len(safe) > maxTitleLength {
		safe = strings.TrimSpace(safe[:maxTitleLength])
	}
	return safe
}

// NormalizeTitle folds a title for fuzzy matching: lowercase, underscores and
// dashes become spaces, runs of whitespace collapse to one space. Matching on
// normalized titles is best-effort, not exact identity.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// TitlesMatch reports whether two titles refer to the same recording under
// the normalized-containment rule used by the listing overlay.
func TitlesMatch(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}
