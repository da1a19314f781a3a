// Package normalize trims and canonicalizes user-supplied identifiers
// before they are stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username trims a username. Case is preserved for display; use UsernameCI
// for lookups.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// UsernameCI returns the folded form stored in username_ci.
func UsernameCI(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Role lowercases and trims a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

