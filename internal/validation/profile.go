// Package validation holds the input rules shared by services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLen = 50
	MaxBioLen  = 160
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// Names that collide with routes or would read as official accounts.
var reservedUsernames = map[string]struct{}{
	"admin":   {},
	"api":     {},
	"me":      {},
	"media":   {},
	"metrics": {},
	"health":  {},
	"pulse":   {},
	"support": {},
	"swagger": {},
	"ws":      {},
}

// NormalizeUsername lowercases and trims a username before validation.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks a normalized username for format and reserved names.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters of a-z, 0-9 or _")
	}
	if strings.Trim(username, "_") == "" {
		return fmt.Errorf("username needs at least one letter or digit")
	}
	if _, exists := reservedUsernames[username]; exists {
		return fmt.Errorf("username is reserved")
	}
	return nil
}

// ValidateName limits the display name length in characters.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("name too long (max %d characters)", MaxNameLen)
	}
	return nil
}

// ValidateBio limits the bio length in characters.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLen {
		return fmt.Errorf("bio too long (max %d characters)", MaxBioLen)
	}
	return nil
}
