// Package identity canonicalizes owner/account/bot identifiers so that
// records arriving with inconsistent spellings ("USR-123", "usr123", "123")
// compare equal. Exported standalone for reuse by form validation.
package identity

import (
	"regexp"
	"strings"
)

// DefaultPrefix is applied to bare numeric identifiers that carry no family
// prefix of their own.
const DefaultPrefix = "USR"

var wellFormedRe = regexp.MustCompile(`^[A-Z]+-\d{3,}$`)

// Normalize returns the canonical form of a raw identifier: upper-cased
// prefix, a single "-" separator, and the remaining suffix untouched.
// It is pure, total, and idempotent; empty input normalizes to "".
// Malformed input degrades to a best-effort canonical guess, never an error.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// Leading letters form the prefix. Everything after any run of
	// separators is the suffix.
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	prefix := strings.ToUpper(s[:i])
	suffix := strings.TrimLeft(s[i:], "-_ ")

	if prefix == "" {
		// Bare numeric (or otherwise prefix-less) identifier.
		return DefaultPrefix + "-" + suffix
	}
	return prefix + "-" + suffix
}

// IsWellFormed reports whether the normalized form of raw matches the strict
// canonical pattern (upper-case prefix, "-", at least three digits). It is a
// diagnostic predicate only: malformed identifiers still normalize and
// compare, callers just log a warning.
func IsWellFormed(raw string) bool {
	return wellFormedRe.MatchString(Normalize(raw))
}

// Equal reports whether two raw identifiers normalize to the same canonical
// form.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
