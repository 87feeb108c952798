package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	plateRe     = regexp.MustCompile(`^[A-Z0-9]{4,10}$`)
	usernameRe  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	sessionIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidatePlate validates a number plate as used in lookup routes. Plates
// arrive normalized (uppercase, no spaces) but user input may not be.
func ValidatePlate(plate string) error {
	plate = strings.ToUpper(strings.ReplaceAll(plate, " ", ""))
	if !plateRe.MatchString(plate) {
		return fmt.Errorf("plate must be 4-10 uppercase letters and digits")
	}
	return nil
}

// NormalizePlate returns the canonical form used as the storage key.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(plate), " ", ""))
}

// ValidateUsername validates username format
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return fmt.Errorf("username must be between 3 and 20 characters")
	}

	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores and hyphens")
	}

	return nil
}

// ValidateSessionToken validates the opaque session token format
// (base64 RawURL, no padding).
func ValidateSessionToken(token string) error {
	if len(token) < 16 || len(token) > 64 {
		return fmt.Errorf("session token must be between 16 and 64 characters")
	}

	if !sessionIDRe.MatchString(token) {
		return fmt.Errorf("session token contains invalid characters")
	}

	return nil
}

// ValidatePortal checks that a portal name from a request matches one of the
// configured sources.
func ValidatePortal(portal string, known []string) error {
	for _, k := range known {
		if portal == k {
			return nil
		}
	}
	return fmt.Errorf("unknown portal %q", portal)
}
