// internal/app/system/normalize/normalize.go
//
// Package normalize canonicalises user-entered strings before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoginID trims a login identifier. Case is kept; comparisons use login_id_ci.
func LoginID(s string) string {
	return strings.TrimSpace(s)
}

// Name trims a display name and collapses inner runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AuthMethod trims and lowercases an auth method ("trust", "password").
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims and lowercases an account status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role trims and lowercases a site or course role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
