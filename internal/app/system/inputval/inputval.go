// internal/app/system/inputval/inputval.go
package inputval

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/dalemusser/venuehub/internal/domain/models"
)

// MaxUsernameLen bounds usernames. Federated accounts use their email as
// username, so this matches the practical email length limit.
const MaxUsernameLen = 254

// IsValidEmail reports whether s is a bare addr-spec: no display name,
// no surrounding spaces, no empty or doubled dots.
func IsValidEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	return dotsOK(local) && dotsOK(domain)
}

func dotsOK(s string) bool {
	return s != "" &&
		!strings.HasPrefix(s, ".") &&
		!strings.HasSuffix(s, ".") &&
		!strings.Contains(s, "..")
}

// IsValidUsername accepts 1..MaxUsernameLen printable characters with no
// whitespace.
func IsValidUsername(s string) bool {
	if s == "" || len(s) > MaxUsernameLen {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// IsValidRole reports whether s names one of the account roles (case-insensitive).
func IsValidRole(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.RoleUser, models.RoleOfficer, models.RoleAdmin:
		return true
	}
	return false
}
