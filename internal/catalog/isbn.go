package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// SyntheticISBNPrefix namespaces generated identifiers for books without a
// real ISBN. Canonical ISBNs are digits (ISBN-10 may end in X) and never
// contain a hyphen, so the two namespaces cannot collide.
const SyntheticISBNPrefix = "XID-"

// CanonicalISBN strips hyphens and spaces and reports whether the result is
// a well-formed ISBN-10 or ISBN-13. Synthetic identifiers pass through
// unchanged and are reported as canonical, since they are valid book keys.
func CanonicalISBN(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if IsSyntheticISBN(s) {
		return s, true
	}

	cleaned := strings.ReplaceAll(s, "-", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if isWellFormedISBN(cleaned) {
		return strings.ToUpper(cleaned), true
	}
	return "", false
}

// IsSyntheticISBN reports whether id belongs to the generated-identifier
// namespace.
func IsSyntheticISBN(id string) bool {
	return strings.HasPrefix(id, SyntheticISBNPrefix)
}

// NewSyntheticISBN generates a fresh identifier for a book without an ISBN.
func NewSyntheticISBN() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return SyntheticISBNPrefix + raw[:10]
}

// isWellFormedISBN checks shape only: 10 or 13 characters, all digits,
// except that an ISBN-10 may end in an X check digit. Checksum validation
// is deliberately not done; scanned barcodes are trusted.
func isWellFormedISBN(s string) bool {
	if len(s) != 10 && len(s) != 13 {
		return false
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == 'X' || r == 'x') && len(s) == 10 && i == 9 {
			continue
		}
		return false
	}
	return true
}
